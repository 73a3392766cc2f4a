package currents

import "encoding/json"

// Envelope is the value every tool returns. Exactly one of result or error
// is emitted, so a success envelope keeps result even when the provider
// answered null. Success is omitted on the failure envelopes of the
// available-* tools, which only carry Error.
type Envelope struct {
	Success      *bool         `json:"success,omitempty" jsonschema:"Whether the provider call succeeded"`
	SearchParams *SearchParams `json:"search_params,omitempty" jsonschema:"Parameters sent to the provider (search_news only)"`
	Language     string        `json:"language,omitempty" jsonschema:"Requested language (get_latest_news only)"`
	Result       any           `json:"result,omitempty" jsonschema:"Raw provider payload"`
	Error        string        `json:"error,omitempty" jsonschema:"Human-readable failure message"`
}

// MarshalJSON emits result on every envelope that is not a failure
func (e Envelope) MarshalJSON() ([]byte, error) {
	type plain Envelope
	if e.Failed() {
		return json.Marshal(plain(e))
	}
	return json.Marshal(struct {
		plain
		Result any `json:"result"`
	}{plain: plain(e), Result: e.Result})
}

// Failed reports whether the envelope carries an error
func (e Envelope) Failed() bool {
	return e.Error != ""
}

// Succeed builds a success envelope around a provider payload
func Succeed(result any) Envelope {
	ok := true
	return Envelope{Success: &ok, Result: result}
}

// Fail builds a {success:false, error} envelope
func Fail(msg string) Envelope {
	ok := false
	return Envelope{Success: &ok, Error: msg}
}

// FailBare builds an {error} envelope without a success key
func FailBare(msg string) Envelope {
	return Envelope{Error: msg}
}
