package export

import (
	"bytes"
	"fmt"

	"github.com/rendis/batchml/internal/compiler"
	"github.com/rendis/batchml/internal/transport"
	"github.com/rendis/batchml/pkg/schema"
)

// Download file names.
const (
	GeneralFile          = "Verfahrensrezept.xml"
	GeneralInvalidFile   = "invalid_Verfahrensrezept.xml"
	GeneralUncheckedFile = "unchecked_Verfahrensrezept.xml"
	MasterFile           = "master_recipe.xml"
	MasterInvalidFile    = "invalid_master_recipe.xml"
)

// Service paths.
const (
	GeneralValidatePath = "/grecipe/validate"
	MasterSubmitPath    = "/api/recipe/master"
	generalQueryParam   = "xml_string"
)

// Outcome classifies how the service judged a submitted document.
type Outcome string

const (
	OutcomeValid       Outcome = "valid"
	OutcomeInvalid     Outcome = "invalid"
	OutcomeUnreachable Outcome = "unreachable"
	OutcomeServerError Outcome = "server_error"
	// OutcomeOffline means nothing was submitted.
	OutcomeOffline Outcome = "offline"
)

// decision is what to do with a document once the transport has answered.
type decision struct {
	outcome  Outcome
	filename string
	// body is the downloaded text; nil means no download.
	body    []byte
	code    string
	message string
}

// classify maps a transport answer onto the outcome table. text is the
// serialized document; err is a transport failure with no response.
func classify(kind compiler.Kind, text []byte, resp *transport.Response, err error) decision {
	if kind == compiler.KindMaster {
		return classifyMaster(text, resp, err)
	}
	return classifyGeneral(text, resp, err)
}

func classifyGeneral(text []byte, resp *transport.Response, err error) decision {
	switch {
	case err != nil || resp.Status == 404:
		return decision{
			outcome:  OutcomeUnreachable,
			filename: GeneralUncheckedFile,
			body:     text,
			code:     schema.ErrCodeTransportUnreachable,
			message:  "unable to reach the validation service; the general recipe was saved unchecked",
		}
	case resp.Success():
		return decision{outcome: OutcomeValid, filename: GeneralFile, body: text}
	case resp.Status == 400:
		return decision{
			outcome:  OutcomeInvalid,
			filename: GeneralInvalidFile,
			body:     text,
			code:     schema.ErrCodeTransportInvalid,
			message:  "the generated general recipe is invalid but was saved nevertheless",
		}
	default:
		return decision{
			outcome:  OutcomeServerError,
			filename: GeneralUncheckedFile,
			body:     text,
			code:     schema.ErrCodeTransportServer,
			message:  fmt.Sprintf("the general recipe could not be validated (HTTP %d)", resp.Status),
		}
	}
}

func classifyMaster(text []byte, resp *transport.Response, err error) decision {
	if err != nil {
		return decision{
			outcome:  OutcomeUnreachable,
			filename: MasterFile,
			body:     text,
			code:     schema.ErrCodeTransportUnreachable,
			message:  "unable to reach the validation service; the master recipe was saved unchecked",
		}
	}
	switch {
	case resp.Success():
		// The service answers with the converted document.
		body := text
		if isXML(resp.Data) {
			body = resp.Data
		}
		return decision{outcome: OutcomeValid, filename: MasterFile, body: body}
	case resp.Status == 400:
		return decision{
			outcome:  OutcomeInvalid,
			filename: MasterInvalidFile,
			body:     text,
			code:     schema.ErrCodeTransportInvalid,
			message:  "master recipe validation failed: " + errorText(resp.Data),
		}
	case resp.Status == 404:
		body := text
		if isXML(resp.Data) {
			body = resp.Data
		}
		return decision{
			outcome:  OutcomeUnreachable,
			filename: MasterFile,
			body:     body,
			code:     schema.ErrCodeTransportUnreachable,
			message:  "the validation service was not found; the master recipe was saved unchecked",
		}
	}

	d := decision{
		outcome: OutcomeServerError,
		code:    schema.ErrCodeTransportServer,
		message: fmt.Sprintf("error creating master recipe (HTTP %d): %s", resp.Status, errorText(resp.Data)),
	}
	if isXML(resp.Data) {
		d.filename = MasterFile
		d.body = resp.Data
	}
	return d
}

func offline(kind compiler.Kind, text []byte) decision {
	name := GeneralUncheckedFile
	if kind == compiler.KindMaster {
		name = MasterFile
	}
	return decision{outcome: OutcomeOffline, filename: name, body: text}
}

func isXML(data []byte) bool {
	return bytes.Contains(data, []byte("<?xml"))
}

func errorText(data []byte) string {
	const limit = 512
	s := string(bytes.TrimSpace(data))
	if s == "" {
		return "no details"
	}
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return s
}
