package editing

import "photostudio/internal/domain"

// OutcomeKind tags the three possible results of an edit request.
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeRefusal
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRefusal:
		return "refusal"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// ErrorKind classifies failures.
type ErrorKind string

const (
	ErrorValidation ErrorKind = "validation"
	ErrorConfig     ErrorKind = "config"
	ErrorService    ErrorKind = "service"
	ErrorNoOutput   ErrorKind = "no_output"
	ErrorUnknown    ErrorKind = "unknown"
)

// User-facing messages.
const (
	MsgInvalidMIME   = "Invalid file type. Please upload an image."
	MsgEmptyPrompt   = "Please provide an editing prompt."
	MsgEmptyImage    = "Please select an image to edit."
	MsgConfig        = "API configuration error. Please ensure your project is properly set up for Gemini 2.5 models."
	MsgService       = "Gemini encountered an internal error. This can happen with very large images or complex prompts. Try again with a different photo or shorter prompt."
	MsgNoOutput      = "The model returned nothing usable. Try a different prompt or check if the image is too complex."
	MsgCommunication = "Failed to communicate with the AI model."
)

// Outcome is the terminal result of one Submit call. Exactly one of Image
// (success), Text (refusal) or ErrKind+Text (failure) is meaningful.
type Outcome struct {
	Kind    OutcomeKind
	Image   domain.Image
	Text    string
	ErrKind ErrorKind
}

// Success wraps an edited image.
func Success(img domain.Image) Outcome {
	return Outcome{Kind: OutcomeSuccess, Image: img}
}

// Refusal wraps explanatory text returned instead of an image.
func Refusal(text string) Outcome {
	return Outcome{Kind: OutcomeRefusal, Text: text}
}

// Failure wraps a classified error.
func Failure(kind ErrorKind, message string) Outcome {
	return Outcome{Kind: OutcomeFailure, ErrKind: kind, Text: message}
}

// OK reports whether the outcome carries an edited image.
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess
}

// Message is the text a user should see for a refusal or failure.
func (o Outcome) Message() string {
	if o.Kind == OutcomeSuccess {
		return ""
	}
	return o.Text
}
