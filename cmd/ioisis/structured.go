package main

import (
	"encoding/json"

	"github.com/scieloorg/ioisis-go/internal/errs"
	"github.com/scieloorg/ioisis-go/internal/subfield"
	"github.com/scieloorg/ioisis-go/internal/tidylist"
)

// structuredEncode renders rec as the JSON value appropriate to mode: a
// single object for field/pairs/nest/inest, or an array of rows for
// tidy/stidy (one line per record either way, per DESIGN.md's JSON Lines
// row shapes).
func structuredEncode(mode string, rec tidylist.Record, sp *subfield.Parser) (interface{}, error) {
	switch mode {
	case "field":
		return rec.FieldMode(), nil
	case "pairs":
		return rec.PairsMode(sp), nil
	case "nest":
		return rec.NestMode(sp, true), nil
	case "inest":
		return rec.NestMode(sp, false), nil
	case "tidy":
		return rec.TidyRows(), nil
	case "stidy":
		return rec.STidyRows(sp), nil
	default:
		return nil, errs.NewConfigurationError("ioisis: unknown mode %q", mode)
	}
}

// structuredDecode parses raw back into a tidylist.Record per mode.
func structuredDecode(mode string, raw json.RawMessage, sp *subfield.Parser) (tidylist.Record, error) {
	switch mode {
	case "field", "pairs", "nest", "inest":
		var m map[string]interface{}
		if err := json.Unmarshal(raw, &m); err != nil {
			return tidylist.Record{}, errs.NewFormatError("json", "mode %q expects a JSON object: %s", mode, err.Error())
		}
		switch mode {
		case "field":
			return tidylist.FromFieldMode(m)
		case "pairs":
			return tidylist.FromPairsMode(m, sp)
		default:
			return tidylist.FromNestMode(m, sp)
		}
	case "tidy":
		var rows []tidylist.TidyRow
		if err := json.Unmarshal(raw, &rows); err != nil {
			return tidylist.Record{}, errs.NewFormatError("json", "mode %q expects an array of rows: %s", mode, err.Error())
		}
		return tidylist.FromTidyRows(rows), nil
	case "stidy":
		var rows []tidylist.STidyRow
		if err := json.Unmarshal(raw, &rows); err != nil {
			return tidylist.Record{}, errs.NewFormatError("json", "mode %q expects an array of rows: %s", mode, err.Error())
		}
		return tidylist.FromSTidyRows(rows, sp)
	default:
		return tidylist.Record{}, errs.NewConfigurationError("ioisis: unknown mode %q", mode)
	}
}
