package grok

import "github.com/tidwall/gjson"

// RoleUser is the role of caller-supplied messages.
const RoleUser = "user"

// Message is one entry of a chat completion conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is the chat completion request body.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Response is a decoded chat completion response body.
type Response struct {
	raw  []byte
	body any
}

// Body returns the decoded JSON body as sent by the API. It is usually an
// object, but any valid JSON value is kept as is.
func (r *Response) Body() any {
	return r.body
}

// Raw returns the undecoded response body.
func (r *Response) Raw() []byte {
	return r.raw
}

// Content returns the first choice's message content. It reports false
// when the body has no such string, including an empty choices list.
func (r *Response) Content() (string, bool) {
	if r == nil {
		return "", false
	}
	res := gjson.GetBytes(r.raw, "choices.0.message.content")
	if res.Type != gjson.String {
		return "", false
	}
	return res.String(), true
}
