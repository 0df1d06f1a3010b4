package document

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// ParseCUE parses a CUE file whose top-level "document" field holds the
// document. Uses the CUE SDK's Go API directly.
func ParseCUE(data []byte, filename string) (*Document, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	docVal := v.LookupPath(cue.ParsePath("document"))
	if !docVal.Exists() {
		return nil, &CompileError{
			Field:   "document",
			Message: "document is required",
			Pos:     v.Pos(),
		}
	}
	return CompileDocument(docVal)
}

// CompileDocument parses a CUE value into a Document.
func CompileDocument(v cue.Value) (*Document, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	doc := &Document{}
	var err error
	if doc.Name, err = optionalString(v, "name"); err != nil {
		return nil, err
	}
	if doc.Description, err = optionalString(v, "description"); err != nil {
		return nil, err
	}
	if doc.Table, err = optionalString(v, "table"); err != nil {
		return nil, err
	}

	strictVal := v.LookupPath(cue.ParsePath("strict"))
	if strictVal.Exists() {
		if doc.Strict, err = strictVal.Bool(); err != nil {
			return nil, formatCUEError(err)
		}
	}

	stepsVal := v.LookupPath(cue.ParsePath("steps"))
	if !stepsVal.Exists() {
		doc.Steps = []Step{}
		return doc, nil
	}

	iter, err := stepsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var raws []rawStep
	for i := 0; iter.Next(); i++ {
		sv := iter.Value()
		var raw any
		if err := sv.Decode(&raw); err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("steps[%d]", i),
				Message: err.Error(),
				Pos:     sv.Pos(),
			}
		}
		raws = append(raws, rawStep{value: raw, pos: sv.Pos()})
	}

	doc.Steps, err = parseSteps("steps", raws)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: err.Error(), Pos: fv.Pos()}
	}
	return s, nil
}
