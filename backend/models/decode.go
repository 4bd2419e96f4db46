package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FieldError reports a request body field whose value cannot be decoded.
type FieldError struct {
	Field   string
	Problem string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s has %s", e.Field, e.Problem)
}

// dateLayouts are tried in order. The last two are what HTML date and
// datetime-local inputs submit.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDate reads an RFC 3339 timestamp or a bare calendar date. Values
// without a zone are taken as UTC.
func ParseDate(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeDate reads a JSON date. ok is false for null and "".
func decodeDate(field string, raw json.RawMessage) (t time.Time, ok bool, err error) {
	if isNull(raw) {
		return time.Time{}, false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, false, &FieldError{Field: field, Problem: "an invalid date"}
	}
	if s = strings.TrimSpace(s); s == "" {
		return time.Time{}, false, nil
	}
	t, err = ParseDate(s)
	if err != nil {
		return time.Time{}, false, &FieldError{Field: field, Problem: "an invalid date"}
	}
	return t, true, nil
}

// setDate assigns a present, non-empty date to dst. Absent, null and ""
// leave dst as it was so defaults and stored values survive.
func setDate(field string, raw json.RawMessage, dst *time.Time) error {
	if raw == nil {
		return nil
	}
	t, ok, err := decodeDate(field, raw)
	if err != nil || !ok {
		return err
	}
	*dst = t
	return nil
}

// setOptionalDate is setDate for nullable dates: null and "" clear dst.
func setOptionalDate(field string, raw json.RawMessage, dst **time.Time) error {
	if raw == nil {
		return nil
	}
	t, ok, err := decodeDate(field, raw)
	if err != nil {
		return err
	}
	if !ok {
		*dst = nil
		return nil
	}
	*dst = &t
	return nil
}

// decodeRef reads a reference given as a hex id or as an expanded document
// carrying _id, the shape responses use. ok is false for null and "".
// A malformed id is ErrInvalidID.
func decodeRef(field string, raw json.RawMessage) (id primitive.ObjectID, ok bool, err error) {
	if isNull(raw) {
		return primitive.NilObjectID, false, nil
	}
	var hex string
	if err := json.Unmarshal(raw, &hex); err != nil {
		var doc struct {
			ID *string `json:"_id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == nil {
			return primitive.NilObjectID, false, &FieldError{Field: field, Problem: "an invalid reference"}
		}
		hex = *doc.ID
	}
	if hex = strings.TrimSpace(hex); hex == "" {
		return primitive.NilObjectID, false, nil
	}
	id, err = ParseID(hex)
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	return id, true, nil
}

// setRef assigns a present reference to dst; null and "" zero it.
func setRef(field string, raw json.RawMessage, dst *primitive.ObjectID) error {
	if raw == nil {
		return nil
	}
	id, _, err := decodeRef(field, raw)
	if err != nil {
		return err
	}
	*dst = id
	return nil
}

// setOptionalRef is setRef for nullable references: null and "" clear dst.
func setOptionalRef(field string, raw json.RawMessage, dst **primitive.ObjectID) error {
	if raw == nil {
		return nil
	}
	id, ok, err := decodeRef(field, raw)
	if err != nil {
		return err
	}
	if !ok {
		*dst = nil
		return nil
	}
	*dst = &id
	return nil
}

// firstError returns the first non-nil error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// UnmarshalJSON decodes a collaborator body. dataAdmissao accepts the
// formats of ParseDate; "" keeps the current value.
func (c *Collaborator) UnmarshalJSON(data []byte) error {
	type plain Collaborator
	body := struct {
		*plain
		DataAdmissao json.RawMessage `json:"dataAdmissao"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	return setDate("dataAdmissao", body.DataAdmissao, &c.DataAdmissao)
}

// UnmarshalJSON decodes a project body. Dates accept the formats of
// ParseDate; "" keeps the current value.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	body := struct {
		*plain
		DataInicio  json.RawMessage `json:"dataInicio"`
		DataTermino json.RawMessage `json:"dataTermino"`
	}{plain: (*plain)(p)}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	return firstError(
		setDate("dataInicio", body.DataInicio, &p.DataInicio),
		setDate("dataTermino", body.DataTermino, &p.DataTermino),
	)
}

// UnmarshalJSON decodes an assignment. colaborador may be an id or an
// expanded collaborator.
func (a *Assignment) UnmarshalJSON(data []byte) error {
	type plain Assignment
	body := struct {
		*plain
		Colaborador json.RawMessage `json:"colaborador"`
		DataEntrada json.RawMessage `json:"dataEntrada"`
		DataSaida   json.RawMessage `json:"dataSaida"`
	}{plain: (*plain)(a)}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	return firstError(
		setRef("colaborador", body.Colaborador, &a.Colaborador),
		setDate("dataEntrada", body.DataEntrada, &a.DataEntrada),
		setOptionalDate("dataSaida", body.DataSaida, &a.DataSaida),
	)
}

// UnmarshalJSON decodes a task body. projeto and responsavel may be ids or
// expanded documents; "" clears a nullable date or reference.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	body := struct {
		*plain
		Projeto        json.RawMessage `json:"projeto"`
		Responsavel    json.RawMessage `json:"responsavel"`
		DataInicio     json.RawMessage `json:"dataInicio"`
		DataVencimento json.RawMessage `json:"dataVencimento"`
		DataConclusao  json.RawMessage `json:"dataConclusao"`
	}{plain: (*plain)(t)}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	return firstError(
		setRef("projeto", body.Projeto, &t.Projeto),
		setOptionalRef("responsavel", body.Responsavel, &t.Responsavel),
		setOptionalDate("dataInicio", body.DataInicio, &t.DataInicio),
		setOptionalDate("dataVencimento", body.DataVencimento, &t.DataVencimento),
		setOptionalDate("dataConclusao", body.DataConclusao, &t.DataConclusao),
	)
}

// UnmarshalJSON decodes a comment. autor may be an id or an expanded user.
func (c *Comment) UnmarshalJSON(data []byte) error {
	type plain Comment
	body := struct {
		*plain
		Autor     json.RawMessage `json:"autor"`
		CreatedAt json.RawMessage `json:"createdAt"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &body); err != nil {
		return err
	}
	return firstError(
		setOptionalRef("autor", body.Autor, &c.Autor),
		setDate("createdAt", body.CreatedAt, &c.CreatedAt),
	)
}
