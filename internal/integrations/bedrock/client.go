package bedrock

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	"twin-agent/internal/domain"
)

// bedrockAPI is the minimal subset of the Bedrock runtime client used by
// the provider. Defined here for testability.
type bedrockAPI interface {
	Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error)
}

// Client generates replies through the Bedrock Converse API.
type Client struct {
	api     bedrockAPI
	modelID string
}

func NewClient(api bedrockAPI, modelID string) (*Client, error) {
	if api == nil {
		return nil, errors.New("bedrock: api client must not be nil")
	}
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		return nil, errors.New("bedrock: model id must not be empty")
	}
	return &Client{api: api, modelID: modelID}, nil
}

// Generate converses with the configured model. System messages become
// Converse system blocks; user and assistant turns map to conversation
// messages.
func (c *Client) Generate(ctx context.Context, prompt []domain.Message) (string, error) {
	in := &bedrockruntime.ConverseInput{
		ModelId: aws.String(c.modelID),
	}
	for _, m := range prompt {
		switch m.Role {
		case domain.RoleSystem:
			in.System = append(in.System, &types.SystemContentBlockMemberText{Value: m.Content})
		case domain.RoleUser:
			in.Messages = append(in.Messages, conversationMessage(types.ConversationRoleUser, m.Content))
		case domain.RoleAssistant:
			in.Messages = append(in.Messages, conversationMessage(types.ConversationRoleAssistant, m.Content))
		}
	}

	out, err := c.api.Converse(ctx, in)
	if err != nil {
		return "", fmt.Errorf("bedrock: converse: %w", err)
	}
	return replyText(out)
}

func conversationMessage(role types.ConversationRole, content string) types.Message {
	return types.Message{
		Role:    role,
		Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: content}},
	}
}

func replyText(out *bedrockruntime.ConverseOutput) (string, error) {
	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("bedrock: response carries no message")
	}
	var reply strings.Builder
	for _, block := range msg.Value.Content {
		if text, ok := block.(*types.ContentBlockMemberText); ok {
			reply.WriteString(text.Value)
		}
	}
	if reply.Len() == 0 {
		return "", errors.New("bedrock: response message has no text content")
	}
	return reply.String(), nil
}
