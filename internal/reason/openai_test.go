package reason

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LamiKaan/travel-assistant/pkg/domain"
	"github.com/LamiKaan/travel-assistant/pkg/ports"
)

func TestDecodeCall_SearchArguments(t *testing.T) {
	o := &OpenAI{}
	args := `{"trip_type":"two-way","from_city":"Ankara","to_city":"Izmir","depart_date":"2025-06-10","return_date":"2025-06-15"}`

	reasoning, err := o.decodeCall("call_1", searchFlightsTool, args, ports.ScopeFlight)
	require.NoError(t, err)
	require.NotNil(t, reasoning.ToolCall)

	call := reasoning.ToolCall
	assert.Equal(t, "call_1", call.ID)
	assert.Equal(t, domain.ToolCallPending, call.Status)
	assert.Equal(t, domain.SearchArgs{
		FromCity:   "Ankara",
		ToCity:     "Izmir",
		TripType:   domain.TripTwoWay,
		DepartDate: "2025-06-10",
		ReturnDate: "2025-06-15",
	}, call.Args)
}

func TestDecodeCall_IncompleteSearchArguments(t *testing.T) {
	o := &OpenAI{}
	_, err := o.decodeCall("call_1", searchFlightsTool, `{"trip_type":"one-way"}`, ports.ScopeFlight)
	require.Error(t, err)
}

func TestDecodeCall_Intent(t *testing.T) {
	o := &OpenAI{}

	reasoning, err := o.decodeCall("call_1", routeIntentTool, `{"intent":"flight"}`, ports.ScopeTrip)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentFlight, reasoning.Intent)

	_, err = o.decodeCall("call_2", routeIntentTool, `{"intent":"cruise"}`, ports.ScopeTrip)
	require.Error(t, err, "unknown intents must not pass through")
}

func TestDecodeCall_WrongScope(t *testing.T) {
	o := &OpenAI{}
	_, err := o.decodeCall("call_1", searchFlightsTool, `{}`, ports.ScopeTrip)
	require.Error(t, err)
}

func TestBuildInput_RoleMapping(t *testing.T) {
	call := &domain.ToolCall{ID: "call_9", Name: searchFlightsTool, Args: domain.SearchArgs{FromCity: "Ankara"}}
	history := []domain.Message{
		domain.SystemMessage("context"),
		domain.UserMessage("hello"),
		domain.AssistantMessage("hi"),
		{Role: domain.RoleAssistant, ToolCall: call},
		domain.ToolResultMessage("call_9", `{"depart_offers":[]}`, false),
	}

	items := buildInput(history)
	require.Len(t, items, 5)

	assert.NotNil(t, items[0].OfMessage)
	assert.NotNil(t, items[1].OfMessage)
	assert.NotNil(t, items[2].OfOutputMessage)
	require.NotNil(t, items[3].OfFunctionCall)
	assert.Equal(t, "call_9", items[3].OfFunctionCall.CallID)
	require.NotNil(t, items[4].OfFunctionCallOutput)
	assert.Equal(t, "call_9", items[4].OfFunctionCallOutput.CallID)
}

func TestScripted(t *testing.T) {
	script := NewScripted(
		Reply("How can I help?"),
		Route(domain.IntentFlight),
	)
	ctx := context.Background()

	first, err := script.Reason(ctx, nil, ports.ScopeTrip)
	require.NoError(t, err)
	assert.Equal(t, "How can I help?", first.Reply)

	second, err := script.Reason(ctx, nil, ports.ScopeTrip)
	require.NoError(t, err)
	assert.Equal(t, domain.IntentFlight, second.Intent)

	_, err = script.Reason(ctx, nil, ports.ScopeTrip)
	require.Error(t, err, "exhausted script must fail loudly")
	assert.Equal(t, 2, script.Calls())
}
