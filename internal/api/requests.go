package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"questioner.dev/reference-db/internal/core"
)

// optionalID accepts a category id sent as a JSON number, a numeric string, an
// empty string or null. The frontend posts the raw <select> value.
type optionalID struct {
	Value *int64
}

func (o *optionalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}

	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			o.Value = nil
			return nil
		}
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", raw)
	}
	o.Value = &id
	return nil
}

type createCategoryRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type questionRequest struct {
	CategoryID     optionalID `json:"category_id"`
	QuestionNumber *string    `json:"question_number"`
	QuestionText   string     `json:"question_text"`
	AnswerText     string     `json:"answer_text"`
	Keywords       *string    `json:"keywords"`
}

func (q questionRequest) input() core.QuestionInput {
	return core.QuestionInput{
		CategoryID:     q.CategoryID.Value,
		QuestionNumber: q.QuestionNumber,
		QuestionText:   q.QuestionText,
		AnswerText:     q.AnswerText,
		Keywords:       q.Keywords,
	}
}
