// Package seed carga datos iniciales (tenants, usuarios, rutas, delegaciones y plantillas)
// desde un archivo YAML, usando los mismos casos de uso que la API.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jhoicas/Aprobaciones-api/internal/application/dto"
	"github.com/jhoicas/Aprobaciones-api/internal/application/ports"
	"github.com/jhoicas/Aprobaciones-api/internal/application/usecase"
	"github.com/jhoicas/Aprobaciones-api/internal/domain"
	"github.com/jhoicas/Aprobaciones-api/internal/domain/entity"
)

// File raíz del YAML de seed.
type File struct {
	Tenants []Tenant `yaml:"tenants"`
}

// Tenant un tenant con todo lo que le pertenece. Usuarios se referencian por email.
type Tenant struct {
	Name          string         `yaml:"name"`
	Slug          string         `yaml:"slug"`
	Users         []User         `yaml:"users"`
	Routes        []Route        `yaml:"routes"`
	Delegations   []Delegation   `yaml:"delegations"`
	FormTemplates []FormTemplate `yaml:"form_templates"`
}

// User usuario a crear.
type User struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
	Role  string `yaml:"role"`
}

// Route ruta con sus pasos.
type Route struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step un aprobador; approver es el email.
type Step struct {
	Order    int    `yaml:"order"`
	Approver string `yaml:"approver"`
	Quorum   string `yaml:"quorum"`
	Optional bool   `yaml:"optional"`
}

// Delegation ventana de delegación, fechas YYYY-MM-DD.
type Delegation struct {
	User     string `yaml:"user"`
	Delegate string `yaml:"delegate"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Reason   string `yaml:"reason"`
}

// FormTemplate plantilla de formulario.
type FormTemplate struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Fields      []Field `yaml:"fields"`
}

// Field campo de plantilla. Min y Max van como texto para conservar la precisión decimal.
type Field struct {
	Key      string   `yaml:"key"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Required bool     `yaml:"required"`
	Options  []string `yaml:"options"`
	Min      string   `yaml:"min"`
	Max      string   `yaml:"max"`
	Pattern  string   `yaml:"pattern"`
}

func (f Field) request() (dto.FormFieldRequest, error) {
	out := dto.FormFieldRequest{Key: f.Key, Label: f.Label, Type: f.Type, Required: f.Required, Options: f.Options, Pattern: f.Pattern}
	for _, b := range []struct {
		raw string
		dst **decimal.Decimal
	}{{f.Min, &out.Min}, {f.Max, &out.Max}} {
		if b.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(b.raw)
		if err != nil {
			return out, fmt.Errorf("%w: campo %q: límite %q", domain.ErrInvalidInput, f.Key, b.raw)
		}
		*b.dst = &d
	}
	return out, nil
}

// SeededUser usuario creado, con su tenant.
type SeededUser struct {
	TenantID   string
	TenantSlug string
	ID         string
	Email      string
	Role       string
}

// Result resumen de lo creado.
type Result struct {
	Tenants       int
	Users         []SeededUser
	Routes        int
	Delegations   int
	FormTemplates int
	Skipped       []string // tenants cuyo slug ya existía
}

// Parse decodifica el YAML de seed y valida referencias básicas.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: decodificar YAML: %w", err)
	}
	for i, t := range f.Tenants {
		if strings.TrimSpace(t.Slug) == "" {
			return nil, fmt.Errorf("seed: tenant #%d sin slug", i+1)
		}
		if !hasAdmin(t.Users) {
			return nil, fmt.Errorf("seed: tenant %q necesita al menos un admin", t.Slug)
		}
	}
	return &f, nil
}

func hasAdmin(users []User) bool {
	for _, u := range users {
		if u.Role == entity.RoleAdmin {
			return true
		}
	}
	return false
}

// Apply crea el contenido del archivo. Los tenants que ya existen se omiten completos,
// así el seed puede ejecutarse más de una vez.
func Apply(ctx context.Context, txRunner ports.TxRunner, clock ports.Clock, f *File, defaultQuorum entity.Quorum) (*Result, error) {
	tenants := usecase.NewTenantUseCase(txRunner, clock)
	users := usecase.NewUserUseCase(txRunner, clock)
	routes := usecase.NewRouteUseCase(txRunner, clock, defaultQuorum)
	delegations := usecase.NewDelegationUseCase(txRunner, clock)
	templates := usecase.NewFormTemplateUseCase(txRunner, clock)

	res := &Result{}
	for _, t := range f.Tenants {
		tenant, err := tenants.Create(ctx, t.Name, t.Slug)
		if errors.Is(err, domain.ErrDuplicate) {
			res.Skipped = append(res.Skipped, t.Slug)
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed: tenant %q: %w", t.Slug, err)
		}
		res.Tenants++

		// ── 1. Usuarios ──────────────────────────────────────────────────────
		ids := make(map[string]string, len(t.Users))
		var adminID string
		bootstrap := entity.Caller{TenantID: tenant.ID, Role: entity.RoleAdmin}
		for _, u := range t.Users {
			out, err := users.Create(ctx, bootstrap, dto.CreateUserRequest{Email: u.Email, Name: u.Name, Role: u.Role})
			if err != nil {
				return res, fmt.Errorf("seed: usuario %q: %w", u.Email, err)
			}
			ids[out.Email] = out.ID
			if adminID == "" && out.Role == entity.RoleAdmin {
				adminID = out.ID
			}
			res.Users = append(res.Users, SeededUser{TenantID: tenant.ID, TenantSlug: tenant.Slug, ID: out.ID, Email: out.Email, Role: out.Role})
		}
		caller := entity.Caller{TenantID: tenant.ID, UserID: adminID, Role: entity.RoleAdmin}
		lookup := func(email string) (string, error) {
			id, ok := ids[strings.ToLower(strings.TrimSpace(email))]
			if !ok {
				return "", fmt.Errorf("%w: %s", domain.ErrUserNotFound, email)
			}
			return id, nil
		}

		// ── 2. Rutas ─────────────────────────────────────────────────────────
		for _, r := range t.Routes {
			in := dto.CreateRouteRequest{Name: r.Name, Description: r.Description}
			for _, s := range r.Steps {
				approverID, err := lookup(s.Approver)
				if err != nil {
					return res, fmt.Errorf("seed: ruta %q: %w", r.Name, err)
				}
				required := !s.Optional
				in.Steps = append(in.Steps, dto.StepRequest{Order: s.Order, ApproverID: approverID, Quorum: s.Quorum, IsRequired: &required})
			}
			if _, err := routes.Create(ctx, caller, in); err != nil {
				return res, fmt.Errorf("seed: ruta %q: %w", r.Name, err)
			}
			res.Routes++
		}

		// ── 3. Delegaciones ──────────────────────────────────────────────────
		for _, d := range t.Delegations {
			userID, err := lookup(d.User)
			if err != nil {
				return res, fmt.Errorf("seed: delegación: %w", err)
			}
			delegateID, err := lookup(d.Delegate)
			if err != nil {
				return res, fmt.Errorf("seed: delegación: %w", err)
			}
			_, err = delegations.Create(ctx, caller, dto.CreateDelegationRequest{
				UserID: userID, DelegateUserID: delegateID, StartDate: d.Start, EndDate: d.End, Reason: d.Reason,
			})
			if err != nil {
				return res, fmt.Errorf("seed: delegación %s -> %s: %w", d.User, d.Delegate, err)
			}
			res.Delegations++
		}

		// ── 4. Plantillas ────────────────────────────────────────────────────
		for _, ft := range t.FormTemplates {
			in := dto.CreateFormTemplateRequest{Name: ft.Name, Description: ft.Description}
			for _, fd := range ft.Fields {
				field, err := fd.request()
				if err != nil {
					return res, fmt.Errorf("seed: plantilla %q: %w", ft.Name, err)
				}
				in.Fields = append(in.Fields, field)
			}
			if _, err := templates.Create(ctx, caller, in); err != nil {
				return res, fmt.Errorf("seed: plantilla %q: %w", ft.Name, err)
			}
			res.FormTemplates++
		}
	}
	return res, nil
}
