package assistant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Intent is the action the oracle assigned to a user message.
type Intent string

const (
	IntentListRecent         Intent = "LIST_RECENT"
	IntentSearch             Intent = "SEARCH"
	IntentSummarizeByID      Intent = "SUMMARIZE_BY_ID"
	IntentSummarizeLast      Intent = "SUMMARIZE_LAST"
	IntentGenerateReply      Intent = "GENERATE_REPLY"
	IntentSendReply          Intent = "SEND_REPLY"
	IntentGetUnreadCount     Intent = "GET_UNREAD_COUNT"
	IntentGetTodayEmailCount Intent = "GET_TODAY_EMAIL_COUNT"
	IntentGreetingOrOther    Intent = "GREETING_OR_OTHER"
)

// DefaultListCount is used when LIST_RECENT carries no usable count.
const DefaultListCount = 5

// Intents lists every supported intent in prompt order.
var Intents = []Intent{
	IntentListRecent,
	IntentSearch,
	IntentSummarizeByID,
	IntentSummarizeLast,
	IntentGenerateReply,
	IntentSendReply,
	IntentGetUnreadCount,
	IntentGetTodayEmailCount,
	IntentGreetingOrOther,
}

var intentAliases = map[string]Intent{
	"GREETING/OTHER": IntentGreetingOrOther,
	"GREETING":       IntentGreetingOrOther,
	"OTHER":          IntentGreetingOrOther,
}

// ParseIntent maps an oracle token to an Intent. Matching ignores case and
// surrounding spaces.
func ParseIntent(token string) (Intent, bool) {
	t := strings.ToUpper(strings.TrimSpace(token))
	for _, in := range Intents {
		if string(in) == t {
			return in, true
		}
	}
	in, ok := intentAliases[t]
	return in, ok
}

// Params is the closed set of per-intent parameter shapes.
type Params interface {
	intent() Intent
}

type ListRecentParams struct {
	Count int
}

type SearchParams struct {
	Query string
}

type SummarizeByIDParams struct {
	EmailID string
}

type SummarizeLastParams struct{}

type GenerateReplyParams struct {
	Instructions string
}

type SendReplyParams struct{}

type UnreadCountParams struct{}

type TodayCountParams struct{}

type GreetingParams struct{}

func (ListRecentParams) intent() Intent    { return IntentListRecent }
func (SearchParams) intent() Intent        { return IntentSearch }
func (SummarizeByIDParams) intent() Intent { return IntentSummarizeByID }
func (SummarizeLastParams) intent() Intent { return IntentSummarizeLast }
func (GenerateReplyParams) intent() Intent { return IntentGenerateReply }
func (SendReplyParams) intent() Intent     { return IntentSendReply }
func (UnreadCountParams) intent() Intent   { return IntentGetUnreadCount }
func (TodayCountParams) intent() Intent    { return IntentGetTodayEmailCount }
func (GreetingParams) intent() Intent      { return IntentGreetingOrOther }

// Decision is a validated oracle answer.
type Decision struct {
	Intent Intent
	Params Params
}

type rawDecision struct {
	Intent     *string         `json:"intent"`
	Parameters json.RawMessage `json:"parameters"`
}

var fenceOpeners = []string{"```json", "```JSON", "```"}

// StripWrapper removes a code fence enclosing the whole answer. Backticks
// inside the answer are left alone.
func StripWrapper(s string) string {
	s = strings.TrimSpace(s)
	for _, m := range fenceOpeners {
		if rest, ok := strings.CutPrefix(s, m); ok {
			s = rest
			break
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeDecision parses an oracle answer into a Decision. Prose around the
// object is skipped: decoding is attempted from every "{" until one yields
// an object with an intent key. Any structural problem is reported as
// *ClassificationError.
func DecodeDecision(text string) (Decision, error) {
	body := StripWrapper(text)

	obj, err := firstDecisionObject(body)
	if err != nil {
		return Decision{}, &ClassificationError{Raw: text, Err: err}
	}

	d, err := decodeDecision(obj)
	if err != nil {
		return Decision{}, &ClassificationError{Raw: text, Err: err}
	}
	return d, nil
}

func firstDecisionObject(body string) ([]byte, error) {
	var firstErr error
	for i := 0; i < len(body); i++ {
		j := strings.IndexByte(body[i:], '{')
		if j == -1 {
			break
		}
		i += j

		var obj map[string]json.RawMessage
		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(body[i:]))
		if err := dec.Decode(&raw); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("json decode failed: %w", err)
			}
			continue
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			continue
		}
		if _, ok := obj["intent"]; ok {
			return raw, nil
		}
		if firstErr == nil {
			firstErr = errors.New("missing intent")
		}
	}

	if firstErr == nil {
		firstErr = errors.New("no JSON object in answer")
	}
	return nil, firstErr
}

func decodeDecision(body []byte) (Decision, error) {
	var raw rawDecision
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Decision{}, fmt.Errorf("json decode failed: %w", err)
	}
	if raw.Intent == nil {
		return Decision{}, errors.New("missing intent")
	}

	in, ok := ParseIntent(*raw.Intent)
	if !ok {
		return Decision{}, fmt.Errorf("unknown intent %q", *raw.Intent)
	}

	params := map[string]any{}
	if p := bytes.TrimSpace(raw.Parameters); len(p) > 0 && !bytes.Equal(p, []byte("null")) {
		pd := json.NewDecoder(bytes.NewReader(p))
		pd.UseNumber()
		if err := pd.Decode(&params); err != nil {
			return Decision{}, fmt.Errorf("parameters must be an object: %w", err)
		}
	}

	p, err := buildParams(in, params)
	if err != nil {
		return Decision{}, fmt.Errorf("%s parameters: %w", in, err)
	}

	return Decision{Intent: in, Params: p}, nil
}

func buildParams(in Intent, params map[string]any) (Params, error) {
	switch in {
	case IntentListRecent:
		return ListRecentParams{Count: coerceCount(params["count"])}, nil
	case IntentSearch:
		q, err := optionalString(params, "query")
		return SearchParams{Query: q}, err
	case IntentSummarizeByID:
		id, err := optionalString(params, "email_id")
		return SummarizeByIDParams{EmailID: id}, err
	case IntentSummarizeLast:
		return SummarizeLastParams{}, nil
	case IntentGenerateReply:
		instr, err := optionalString(params, "reply_instructions")
		return GenerateReplyParams{Instructions: instr}, err
	case IntentSendReply:
		return SendReplyParams{}, nil
	case IntentGetUnreadCount:
		return UnreadCountParams{}, nil
	case IntentGetTodayEmailCount:
		return TodayCountParams{}, nil
	case IntentGreetingOrOther:
		return GreetingParams{}, nil
	}
	return nil, fmt.Errorf("unsupported intent %q", in)
}

// optionalString accepts a string or a number (oracles sometimes emit
// numeric ids unquoted). Absent or null yields "".
func optionalString(params map[string]any, key string) (string, error) {
	v, ok := params[key]
	if !ok || v == nil {
		return "", nil
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case json.Number:
		return t.String(), nil
	}
	return "", fmt.Errorf("%s must be a string, got %T", key, v)
}

// coerceCount turns the count parameter into a positive int; anything
// unusable falls back to DefaultListCount.
func coerceCount(v any) int {
	var n int64
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			n = i
		} else if f, err := t.Float64(); err == nil && f == math.Trunc(f) {
			n = int64(f)
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			n = i
		}
	}
	if n <= 0 || n > math.MaxInt32 {
		return DefaultListCount
	}
	return int(n)
}
