// Package form valida los datos de formulario de una solicitud contra su plantilla.
package form

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// MaxPayloadBytes tope del objeto Data de un FormPayload.
const MaxPayloadBytes = 64 << 10

// ValidatePayload comprueba la forma del payload sin plantilla: vacío, o un objeto JSON acotado.
func ValidatePayload(p entity.FormPayload) error {
	if p.Empty() {
		return nil
	}
	if len(p.Data) > MaxPayloadBytes {
		return fmt.Errorf("%w: formulario de %d bytes supera el máximo de %d", domain.ErrInvalidInput, len(p.Data), MaxPayloadBytes)
	}
	trimmed := bytes.TrimSpace(p.Data)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return fmt.Errorf("%w: los datos del formulario deben ser un objeto JSON", domain.ErrInvalidInput)
	}
	return nil
}

// ValidateTemplate valida la definición de una plantilla antes de persistirla.
func ValidateTemplate(tpl *entity.FormTemplate) error {
	if tpl == nil || strings.TrimSpace(tpl.Name) == "" {
		return fmt.Errorf("%w: la plantilla requiere nombre", domain.ErrInvalidInput)
	}
	if len(tpl.Fields) == 0 {
		return fmt.Errorf("%w: la plantilla requiere al menos un campo", domain.ErrInvalidInput)
	}
	keys := make(map[string]bool, len(tpl.Fields))
	for _, f := range tpl.Fields {
		if f.Key == "" {
			return fmt.Errorf("%w: campo sin clave", domain.ErrInvalidInput)
		}
		if keys[f.Key] {
			return fmt.Errorf("%w: clave de campo repetida %q", domain.ErrInvalidInput, f.Key)
		}
		keys[f.Key] = true
		switch f.Type {
		case entity.FieldText, entity.FieldTextarea, entity.FieldNumber, entity.FieldDate, entity.FieldCheckbox:
		case entity.FieldSelect:
			if len(f.Options) == 0 {
				return fmt.Errorf("%w: el campo %q de tipo select requiere opciones", domain.ErrInvalidInput, f.Key)
			}
		default:
			return fmt.Errorf("%w: tipo de campo desconocido %q", domain.ErrInvalidInput, f.Type)
		}
		if f.Min != nil && f.Max != nil && f.Min.GreaterThan(*f.Max) {
			return fmt.Errorf("%w: el campo %q tiene min mayor que max", domain.ErrInvalidInput, f.Key)
		}
		if f.Pattern != "" {
			if _, err := regexp.Compile(f.Pattern); err != nil {
				return fmt.Errorf("%w: patrón inválido en %q: %v", domain.ErrInvalidInput, f.Key, err)
			}
		}
	}
	return nil
}

// Validate valida los datos del payload contra la plantilla. Las claves no declaradas se ignoran.
// Devuelve ErrInvalidForm unido a un error por cada campo inválido.
func Validate(tpl *entity.FormTemplate, p entity.FormPayload) error {
	if tpl == nil {
		return nil
	}
	if err := ValidatePayload(p); err != nil {
		return err
	}
	values := map[string]json.RawMessage{}
	if !p.Empty() {
		if err := json.Unmarshal(p.Data, &values); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidForm, err)
		}
	}

	var errs []error
	for _, f := range tpl.Fields {
		raw, ok := values[f.Key]
		if !ok || isNull(raw) {
			if f.Required {
				errs = append(errs, fmt.Errorf("%s: obligatorio", f.Key))
			}
			continue
		}
		if err := validateField(f, raw); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Key, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrInvalidForm}, errs...)...)
	}
	return nil
}

func validateField(f entity.FormField, raw json.RawMessage) error {
	switch f.Type {
	case entity.FieldText, entity.FieldTextarea:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return errors.New("se esperaba texto")
		}
		if f.Required && strings.TrimSpace(s) == "" {
			return errors.New("obligatorio")
		}
		n := decimal.NewFromInt(int64(utf8.RuneCountInString(s)))
		if err := checkBounds(f, n, "longitud"); err != nil {
			return err
		}
		if f.Pattern != "" {
			re, err := regexp.Compile(f.Pattern)
			if err != nil {
				return fmt.Errorf("patrón inválido: %v", err)
			}
			if !re.MatchString(s) {
				return fmt.Errorf("no cumple el patrón %s", f.Pattern)
			}
		}
	case entity.FieldNumber:
		d, err := parseNumber(raw)
		if err != nil {
			return err
		}
		return checkBounds(f, d, "valor")
	case entity.FieldDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return errors.New("se esperaba una fecha")
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return fmt.Errorf("fecha inválida %q", s)
		}
	case entity.FieldSelect:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return errors.New("se esperaba una opción")
		}
		for _, o := range f.Options {
			if o == s {
				return nil
			}
		}
		return fmt.Errorf("opción %q no permitida", s)
	case entity.FieldCheckbox:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return errors.New("se esperaba true o false")
		}
		if f.Required && !b {
			return errors.New("debe estar marcado")
		}
	}
	return nil
}

// parseNumber acepta números JSON o strings numéricos ("1500.50") sin perder precisión.
func parseNumber(raw json.RawMessage) (decimal.Decimal, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		d, err := decimal.NewFromString(strings.TrimSpace(s))
		if err != nil {
			return decimal.Zero, fmt.Errorf("número inválido %q", s)
		}
		return d, nil
	}
	d, err := decimal.NewFromString(string(bytes.TrimSpace(raw)))
	if err != nil {
		return decimal.Zero, errors.New("se esperaba un número")
	}
	return d, nil
}

func checkBounds(f entity.FormField, v decimal.Decimal, what string) error {
	if f.Min != nil && v.LessThan(*f.Min) {
		return fmt.Errorf("%s %s menor que el mínimo %s", what, v.String(), f.Min.String())
	}
	if f.Max != nil && v.GreaterThan(*f.Max) {
		return fmt.Errorf("%s %s mayor que el máximo %s", what, v.String(), f.Max.String())
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
