// Package reason implements the natural-language reasoner port on
// OpenAI's Responses API. Free text comes back as a conversational
// reply; routing and search decisions come back as function calls and
// are mapped to typed values before the workflow sees them.
package reason

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"

	"github.com/LamiKaan/travel-assistant/internal/logging"
	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

const (
	// DefaultModel is used unless overridden with WithModel.
	DefaultModel = "gpt-4o-mini"

	routeIntentTool   = "route_intent"
	searchFlightsTool = "search_flights"
)

// OpenAI is a ports.Reasoner backed by the Responses API.
type OpenAI struct {
	client openai.Client
	model  string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the OpenAI reasoner.
type Option func(*OpenAI)

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(o *OpenAI) { o.model = model }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *OpenAI) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used to anchor relative dates in
// the flight prompt.
func WithClock(now func() time.Time) Option {
	return func(o *OpenAI) { o.now = now }
}

// New builds a reasoner using the given API key.
func New(apiKey string, opts ...Option) *OpenAI {
	return NewFromClient(openai.NewClient(option.WithAPIKey(apiKey)), opts...)
}

// NewFromClient builds a reasoner over an existing client.
func NewFromClient(client openai.Client, opts ...Option) *OpenAI {
	o := &OpenAI{
		client: client,
		model:  DefaultModel,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

var _ ports.Reasoner = (*OpenAI)(nil)

// Reason sends the conversation to the model and maps its answer onto
// the Reasoning union.
func (o *OpenAI) Reason(ctx context.Context, history []domain.Message, scope ports.ReasonScope) (ports.Reasoning, error) {
	params := responses.ResponseNewParams{
		Model: shared.ResponsesModel(o.model),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: buildInput(history),
		},
	}

	switch scope {
	case ports.ScopeTrip:
		params.Instructions = openai.String(tripInstructions)
		params.Temperature = openai.Float(0.1)
		params.MaxOutputTokens = openai.Int(500)
		params.Tools = []responses.ToolUnionParam{routeIntentDef()}
	case ports.ScopeFlight:
		params.Instructions = openai.String(flightInstructions(o.now()))
		params.Temperature = openai.Float(0.2)
		params.MaxOutputTokens = openai.Int(200)
		params.Tools = []responses.ToolUnionParam{searchFlightsDef()}
	default:
		return ports.Reasoning{}, fmt.Errorf("unknown reason scope %q", scope)
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return ports.Reasoning{}, fmt.Errorf("responses api: %w", err)
	}

	reasoning, err := o.parseOutput(resp, scope)
	if err != nil {
		return ports.Reasoning{}, err
	}
	o.logger.Debug("reasoner answered",
		"scope", scope,
		"tool_call", reasoning.ToolCall != nil,
		"intent", reasoning.Intent)
	return reasoning, nil
}

// buildInput converts conversation history to Responses API input items.
// Assistant tool-call turns and tool results map to function call and
// function call output items so the model sees the full tool exchange.
func buildInput(history []domain.Message) responses.ResponseInputParam {
	items := make(responses.ResponseInputParam, 0, len(history))

	for _, msg := range history {
		switch {
		case msg.Role == domain.RoleUser:
			items = append(items, inputMessage(responses.EasyInputMessageRoleUser, msg.Content))

		case msg.Role == domain.RoleSystem:
			items = append(items, inputMessage(responses.EasyInputMessageRoleSystem, msg.Content))

		case msg.Role == domain.RoleAssistant && msg.ToolCall != nil:
			args, err := json.Marshal(msg.ToolCall.Args)
			if err != nil {
				args = []byte("{}")
			}
			items = append(items, responses.ResponseInputItemUnionParam{
				OfFunctionCall: &responses.ResponseFunctionToolCallParam{
					CallID:    msg.ToolCall.ID,
					Name:      msg.ToolCall.Name,
					Arguments: string(args),
				},
			})

		case msg.Role == domain.RoleAssistant:
			items = append(items, responses.ResponseInputItemUnionParam{
				OfOutputMessage: &responses.ResponseOutputMessageParam{
					Content: []responses.ResponseOutputMessageContentUnionParam{
						{
							OfOutputText: &responses.ResponseOutputTextParam{
								Text:        msg.Content,
								Annotations: []responses.ResponseOutputTextAnnotationUnionParam{},
							},
						},
					},
					Status: responses.ResponseOutputMessageStatusCompleted,
				},
			})

		case msg.Role == domain.RoleTool:
			items = append(items, responses.ResponseInputItemUnionParam{
				OfFunctionCallOutput: &responses.ResponseInputItemFunctionCallOutputParam{
					CallID: msg.ToolCallID,
					Output: responses.ResponseInputItemFunctionCallOutputOutputUnionParam{
						OfString: openai.String(msg.Content),
					},
				},
			})
		}
	}
	return items
}

func inputMessage(role responses.EasyInputMessageRole, content string) responses.ResponseInputItemUnionParam {
	return responses.ResponseInputItemUnionParam{
		OfMessage: &responses.EasyInputMessageParam{
			Role: role,
			Content: responses.EasyInputMessageContentUnionParam{
				OfString: openai.String(content),
			},
		},
	}
}

// parseOutput reads the first function call or, failing that, collects
// the assistant text.
func (o *OpenAI) parseOutput(resp *responses.Response, scope ports.ReasonScope) (ports.Reasoning, error) {
	var text string
	for _, item := range resp.Output {
		switch item.Type {
		case "function_call":
			return o.decodeCall(item.CallID, item.Name, item.Arguments, scope)
		case "message":
			for _, content := range item.Content {
				if content.Type == "output_text" {
					text += content.Text
				}
			}
		}
	}
	if text == "" {
		return ports.Reasoning{}, fmt.Errorf("model returned neither text nor a function call")
	}
	return ports.Reasoning{Reply: text}, nil
}

func (o *OpenAI) decodeCall(callID, name, arguments string, scope ports.ReasonScope) (ports.Reasoning, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(arguments), &raw); err != nil {
		return ports.Reasoning{}, fmt.Errorf("decode %s arguments: %w", name, err)
	}

	switch {
	case scope == ports.ScopeTrip && name == routeIntentTool:
		intent, _ := raw["intent"].(string)
		switch domain.Intent(intent) {
		case domain.IntentFlight, domain.IntentCar, domain.IntentHotel:
			return ports.Reasoning{Intent: domain.Intent(intent)}, nil
		}
		return ports.Reasoning{}, fmt.Errorf("model routed to unknown intent %q", intent)

	case scope == ports.ScopeFlight && name == searchFlightsTool:
		var args domain.SearchArgs
		if err := mapstructure.Decode(raw, &args); err != nil {
			return ports.Reasoning{}, fmt.Errorf("decode search arguments: %w", err)
		}
		if args.FromCity == "" || args.ToCity == "" || args.DepartDate == "" {
			return ports.Reasoning{}, fmt.Errorf("model issued incomplete search arguments: %+v", args)
		}
		return ports.Reasoning{ToolCall: &domain.ToolCall{
			ID:     callID,
			Name:   searchFlightsTool,
			Args:   args,
			Status: domain.ToolCallPending,
		}}, nil
	}
	return ports.Reasoning{}, fmt.Errorf("model called unknown tool %q in scope %s", name, scope)
}

func routeIntentDef() responses.ToolUnionParam {
	return responses.ToolUnionParam{
		OfFunction: &responses.FunctionToolParam{
			Name:        routeIntentTool,
			Description: openai.String("Route the user to the part of the system matching their current travel intent."),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"intent": map[string]any{
						"type":        "string",
						"enum":        []string{"flight", "car", "hotel"},
						"description": "Whether the user wants to proceed with flight booking, car rental, or hotel reservation.",
					},
				},
				"required": []string{"intent"},
			},
		},
	}
}

func searchFlightsDef() responses.ToolUnionParam {
	return responses.ToolUnionParam{
		OfFunction: &responses.FunctionToolParam{
			Name:        searchFlightsTool,
			Description: openai.String("Search available flights once every required trip detail has been gathered from the user."),
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"trip_type": map[string]any{
						"type":        "string",
						"enum":        []string{"one-way", "two-way"},
						"description": "Whether the trip is one-way or two-way.",
					},
					"from_city": map[string]any{
						"type":        "string",
						"description": "Departure city of the trip.",
					},
					"to_city": map[string]any{
						"type":        "string",
						"description": "Arrival city of the trip.",
					},
					"depart_date": map[string]any{
						"type":        "string",
						"description": "Departure date in YYYY-MM-DD format.",
					},
					"return_date": map[string]any{
						"type":        "string",
						"description": "Return date in YYYY-MM-DD format. Required only for two-way trips.",
					},
				},
				"required": []string{"trip_type", "from_city", "to_city", "depart_date"},
			},
		},
	}
}
