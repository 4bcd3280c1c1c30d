// Package protocol defines the JSON protocol spoken with Hachimi.
//
// Commands and responses are tagged unions: every message is a flat JSON
// object whose "type" field names the variant, followed by that variant's
// own fields.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Command type tags.
const (
	TypeStoryGotoBlock      = "StoryGotoBlock"
	TypeReloadLocalizedData = "ReloadLocalizedData"
)

// Response type tags.
const (
	TypeOK         = "Ok"
	TypeError      = "Error"
	TypeHelloWorld = "HelloWorld"
)

// Command is an outbound request to Hachimi.
// The set of implementations is closed to this package.
type Command interface {
	json.Marshaler
	// Type returns the wire tag of the command.
	Type() string
	command()
}

// StoryGotoBlock asks Hachimi to jump to a block in the current story.
type StoryGotoBlock struct {
	BlockID     uint32
	Incremental bool
}

func (StoryGotoBlock) Type() string { return TypeStoryGotoBlock }
func (StoryGotoBlock) command()     {}

// MarshalJSON implements json.Marshaler.
func (c StoryGotoBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type        string `json:"type"`
		BlockID     uint32 `json:"block_id"`
		Incremental bool   `json:"incremental"`
	}{TypeStoryGotoBlock, c.BlockID, c.Incremental})
}

// ReloadLocalizedData asks Hachimi to reload localized data from disk.
type ReloadLocalizedData struct{}

func (ReloadLocalizedData) Type() string { return TypeReloadLocalizedData }
func (ReloadLocalizedData) command()     {}

// MarshalJSON implements json.Marshaler.
func (ReloadLocalizedData) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagOnly{Type: TypeReloadLocalizedData})
}

// Response is an inbound result from Hachimi.
type Response interface {
	json.Marshaler
	// Type returns the wire tag of the response.
	Type() string
	response()
}

// Reply is a response that represents success.
// ErrorResponse does not implement it.
type Reply interface {
	Response
	reply()
}

// OK reports success without a payload.
type OK struct{}

func (OK) Type() string { return TypeOK }
func (OK) response()    {}
func (OK) reply()       {}

// MarshalJSON implements json.Marshaler.
func (OK) MarshalJSON() ([]byte, error) {
	return json.Marshal(tagOnly{Type: TypeOK})
}

// HelloWorld is the handshake response.
type HelloWorld struct {
	Message string
}

func (HelloWorld) Type() string { return TypeHelloWorld }
func (HelloWorld) response()    {}
func (HelloWorld) reply()       {}

// MarshalJSON implements json.Marshaler.
func (r HelloWorld) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{TypeHelloWorld, r.Message})
}

// ErrorResponse reports that Hachimi failed to run a command.
// Message is nil when Hachimi gave no reason.
type ErrorResponse struct {
	Message *string
}

func (ErrorResponse) Type() string { return TypeError }
func (ErrorResponse) response()    {}

// MarshalJSON implements json.Marshaler.
func (r ErrorResponse) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    string  `json:"type"`
		Message *string `json:"message"`
	}{TypeError, r.Message})
}

// NewErrorResponse creates an error response carrying msg.
func NewErrorResponse(msg string) ErrorResponse {
	return ErrorResponse{Message: &msg}
}

// UnknownTypeError indicates a message carried a type tag this package does not know.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	if e.Type == "" {
		return "missing type tag"
	}
	return fmt.Sprintf("unknown type %q", e.Type)
}

type tagOnly struct {
	Type string `json:"type"`
}

// ErrNilCommand is returned for a nil command, including a nil pointer
// to a command variant.
var ErrNilCommand = errors.New("nil command")

// CheckCommand reports ErrNilCommand when cmd carries no value.
func CheckCommand(cmd Command) error {
	if isNil(cmd) {
		return ErrNilCommand
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// EncodeCommand serializes cmd to its wire form.
func EncodeCommand(cmd Command) ([]byte, error) {
	if err := CheckCommand(cmd); err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command %s: %w", cmd.Type(), err)
	}
	return data, nil
}

// DecodeCommand parses a command from its wire form.
func DecodeCommand(data []byte) (Command, error) {
	tag, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TypeStoryGotoBlock:
		var body struct {
			BlockID     *uint32 `json:"block_id"`
			Incremental *bool   `json:"incremental"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		if body.BlockID == nil || body.Incremental == nil {
			return nil, fmt.Errorf("decode %s: missing field", tag)
		}
		return StoryGotoBlock{BlockID: *body.BlockID, Incremental: *body.Incremental}, nil
	case TypeReloadLocalizedData:
		return ReloadLocalizedData{}, nil
	default:
		return nil, &UnknownTypeError{Type: tag}
	}
}

// EncodeResponse serializes resp to its wire form.
func EncodeResponse(resp Response) ([]byte, error) {
	if isNil(resp) {
		return nil, fmt.Errorf("encode response: nil response")
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("encode response %s: %w", resp.Type(), err)
	}
	return data, nil
}

// DecodeResponse parses a response from its wire form.
func DecodeResponse(data []byte) (Response, error) {
	tag, err := peekType(data)
	if err != nil {
		return nil, err
	}

	switch tag {
	case TypeOK:
		return OK{}, nil
	case TypeError:
		var body struct {
			Message *string `json:"message"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		return ErrorResponse{Message: body.Message}, nil
	case TypeHelloWorld:
		var body struct {
			Message *string `json:"message"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", tag, err)
		}
		if body.Message == nil {
			return nil, fmt.Errorf("decode %s: missing message", tag)
		}
		return HelloWorld{Message: *body.Message}, nil
	default:
		return nil, &UnknownTypeError{Type: tag}
	}
}

// peekType reads the "type" tag without interpreting the other fields.
func peekType(data []byte) (string, error) {
	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", fmt.Errorf("decode message: %w", err)
	}
	if head.Type == nil {
		return "", &UnknownTypeError{}
	}
	return *head.Type, nil
}
