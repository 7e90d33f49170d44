package persona

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the minimal AWS SSM interface required by ParamStoreLoader.
// *ssm.Client from aws-sdk-go-v2 satisfies this interface.
type ssmAPI interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// ParamStoreLoader reads the personality context from AWS SSM Parameter
// Store: <prefix>/summary, <prefix>/facts and <prefix>/style. All three
// parameters must exist; seed empty values for facts or style if unused.
type ParamStoreLoader struct {
	api    ssmAPI
	prefix string
}

func NewParamStoreLoader(api ssmAPI, prefix string) (*ParamStoreLoader, error) {
	if api == nil {
		return nil, errors.New("persona: ssm api must not be nil")
	}
	prefix = strings.TrimRight(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return nil, errors.New("persona: parameter prefix must not be empty")
	}
	return &ParamStoreLoader{api: api, prefix: prefix}, nil
}

func (l *ParamStoreLoader) Load(ctx context.Context) (Persona, error) {
	summary, err := l.getParameter(ctx, l.prefix+"/summary")
	if err != nil {
		return Persona{}, err
	}
	facts, err := l.getParameter(ctx, l.prefix+"/facts")
	if err != nil {
		return Persona{}, err
	}
	style, err := l.getParameter(ctx, l.prefix+"/style")
	if err != nil {
		return Persona{}, err
	}

	p := Persona{
		Summary: strings.TrimSpace(summary),
		Facts:   strings.TrimSpace(facts),
		Style:   strings.TrimSpace(style),
	}
	if p.Summary == "" {
		return Persona{}, errors.New("persona: summary parameter is empty")
	}
	return p, nil
}

func (l *ParamStoreLoader) getParameter(ctx context.Context, name string) (string, error) {
	withDecryption := true
	out, err := l.api.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: &withDecryption,
	})
	if err != nil {
		return "", fmt.Errorf("persona: get parameter %q: %w", name, err)
	}
	if out == nil || out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("persona: parameter %q missing value", name)
	}
	return *out.Parameter.Value, nil
}
