// Package audit stamps actor and time metadata on every audited entity from
// gorm callbacks, so entities and repositories never set those fields
// themselves.
//
// The acting actor travels on the statement context (WithActor). When it is
// missing the configured Policy decides what happens; there is no other
// fallback.
package audit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Policy decides who is stamped when no actor is on the context.
type Policy string

const (
	PolicyRequire   Policy = "require"
	PolicySystem    Policy = "system"
	PolicyAnonymous Policy = "anonymous"
)

// ErrSoftDeleteRequired is returned for scoped deletes of audited rows; use
// SoftDelete so deleted_by_id is written with deleted_at.
var ErrSoftDeleteRequired = errors.New("audited records must be deleted with audit.SoftDelete")

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyRequire, nil
	case PolicyRequire, PolicySystem, PolicyAnonymous:
		return p, nil
	default:
		return "", fmt.Errorf("unknown audit actor policy %q", s)
	}
}

type Config struct {
	Policy Policy
	// SystemActorID is stamped under PolicySystem.
	SystemActorID uint
	// Now defaults to time.Now.
	Now func() time.Time
}

type actorKey struct{}

// WithActor returns a context carrying the acting actor.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	if actor == nil {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor placed on ctx by WithActor.
func ActorFrom(ctx context.Context) (*models.Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(actorKey{}).(*models.Actor)
	return actor, ok && actor != nil
}

// SoftDelete marks model deleted. The update callback fills deleted_at,
// deleted_by_id and the updated pair in the same statement.
func SoftDelete(tx *gorm.DB, model models.Auditable) *gorm.DB {
	return tx.Model(model).Omit(clause.Associations).Updates(map[string]interface{}{models.ColDeletedAt: gorm.DeletedAt{}})
}

type stamper struct {
	cfg Config
}

// Register installs the audit callbacks on db.
func Register(db *gorm.DB, cfg Config) error {
	if cfg.Policy == "" {
		cfg.Policy = PolicyRequire
	}
	if cfg.Policy == PolicySystem && cfg.SystemActorID == 0 {
		return errors.New("audit policy system needs a system actor id")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &stamper{cfg: cfg}

	if err := db.Callback().Create().Before("gorm:create").Register("audit:stamp_create", s.stampCreate); err != nil {
		return fmt.Errorf("register create callback: %w", err)
	}
	if err := db.Callback().Update().Before("gorm:update").Register("audit:stamp_update", s.stampUpdate); err != nil {
		return fmt.Errorf("register update callback: %w", err)
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("audit:guard_delete", s.guardDelete); err != nil {
		return fmt.Errorf("register delete callback: %w", err)
	}
	return nil
}

func (s *stamper) now() time.Time {
	return s.cfg.Now().UTC().Truncate(time.Microsecond)
}

func (s *stamper) actorID(ctx context.Context) (*uint, error) {
	if actor, ok := ActorFrom(ctx); ok {
		if actor.ID == 0 {
			return nil, fmt.Errorf("%w: actor %q is not persisted", models.ErrMissingActorContext, actor.Username)
		}
		id := actor.ID
		return &id, nil
	}
	switch s.cfg.Policy {
	case PolicySystem:
		id := s.cfg.SystemActorID
		return &id, nil
	case PolicyAnonymous:
		return nil, nil
	default:
		return nil, models.ErrMissingActorContext
	}
}

func (s *stamper) stampCreate(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	targets := auditables(db.Statement)
	if len(targets) == 0 {
		return
	}
	actorID, err := s.actorID(db.Statement.Context)
	if err != nil {
		_ = db.AddError(err)
		return
	}
	now := s.now()
	for _, a := range targets {
		a.AuditTrail().StampCreated(actorID, now)
	}
}

func (s *stamper) stampUpdate(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil {
		return
	}
	stmt := db.Statement
	targets := auditables(stmt)
	if len(targets) == 0 {
		return
	}
	if err := guardImmutable(stmt, targets); err != nil {
		_ = db.AddError(err)
		return
	}
	actorID, err := s.actorID(stmt.Context)
	if err != nil {
		_ = db.AddError(err)
		return
	}

	// updated_at must move forward even when the clock did not
	now := s.now()
	for _, a := range targets {
		trail := a.AuditTrail()
		last := trail.CreatedAt
		if trail.UpdatedAt != nil {
			last = *trail.UpdatedAt
		}
		if !now.After(last) {
			now = last.Add(time.Microsecond)
		}
	}

	updatedAt := now
	columns := []string{models.ColUpdatedAt, models.ColUpdatedByID}
	stmt.SetColumn(models.ColUpdatedAt, &updatedAt, true)
	stmt.SetColumn(models.ColUpdatedByID, actorID, true)
	if deleting(stmt) {
		columns = append(columns, models.ColDeletedAt, models.ColDeletedByID)
		stmt.SetColumn(models.ColDeletedAt, gorm.DeletedAt{Time: now, Valid: true}, true)
		stmt.SetColumn(models.ColDeletedByID, actorID, true)
	}
	if restricted(stmt) {
		stmt.Selects = append(stmt.Selects, columns...)
	}
	stmt.Omits = append(stmt.Omits, models.ColCreatedAt, models.ColCreatedByID)
}

func (s *stamper) guardDelete(db *gorm.DB) {
	if db.Error != nil || db.Statement.Schema == nil || db.Statement.Unscoped {
		return
	}
	if len(auditables(db.Statement)) > 0 {
		_ = db.AddError(ErrSoftDeleteRequired)
	}
}

// auditables collects the Auditable values a statement operates on.
func auditables(stmt *gorm.Statement) []models.Auditable {
	var out []models.Auditable
	rv := stmt.ReflectValue
	switch rv.Kind() {
	case reflect.Struct:
		if a, ok := asAuditable(rv); ok {
			out = append(out, a)
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if a, ok := asAuditable(reflect.Indirect(rv.Index(i))); ok {
				out = append(out, a)
			}
		}
	}
	return out
}

func asAuditable(v reflect.Value) (models.Auditable, bool) {
	if v.Kind() != reflect.Struct || !v.CanAddr() {
		return nil, false
	}
	a, ok := v.Addr().Interface().(models.Auditable)
	return a, ok
}

func deleting(stmt *gorm.Statement) bool {
	dest, ok := stmt.Dest.(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = dest[models.ColDeletedAt]
	return ok
}

func restricted(stmt *gorm.Statement) bool {
	return len(stmt.Selects) > 0 && !(len(stmt.Selects) == 1 && stmt.Selects[0] == "*")
}

// guardImmutable rejects updates that would write an insert-only column.
func guardImmutable(stmt *gorm.Statement, targets []models.Auditable) error {
	var immutable []string
	for _, a := range targets {
		if ic, ok := a.(models.ImmutableColumns); ok {
			immutable = ic.ImmutableColumns()
			break
		}
	}
	if len(immutable) == 0 {
		return nil
	}

	switch dest := stmt.Dest.(type) {
	case map[string]interface{}:
		for key := range dest {
			name := key
			if field := stmt.Schema.LookUpField(key); field != nil {
				name = field.DBName
			}
			for _, col := range immutable {
				if name == col {
					return &models.ImmutableFieldError{Field: col}
				}
			}
		}
	default:
		if stmt.Dest == stmt.Model {
			return guardStored(stmt, immutable)
		}
		dv := reflect.Indirect(reflect.ValueOf(stmt.Dest))
		if dv.Kind() != reflect.Struct {
			return nil
		}
		for _, col := range immutable {
			field := stmt.Schema.LookUpField(col)
			if field == nil {
				continue
			}
			if _, zero := field.ValueOf(stmt.Context, dv); !zero {
				return &models.ImmutableFieldError{Field: col}
			}
		}
	}
	return nil
}

// guardStored handles full-model writes such as Save, where the model is its
// own destination: written immutable columns must still match the stored row.
func guardStored(stmt *gorm.Statement, immutable []string) error {
	pk := stmt.Schema.PrioritizedPrimaryField
	if pk == nil {
		return nil
	}
	var fields []*schema.Field
	names := []string{pk.DBName}
	for _, col := range immutable {
		field := stmt.Schema.LookUpField(col)
		if field == nil || field.PrimaryKey || !writes(stmt, field) {
			continue
		}
		fields = append(fields, field)
		names = append(names, field.DBName)
	}
	if len(fields) == 0 {
		return nil
	}

	var rows []reflect.Value
	rv := reflect.Indirect(stmt.ReflectValue)
	switch rv.Kind() {
	case reflect.Struct:
		rows = append(rows, rv)
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			rows = append(rows, reflect.Indirect(rv.Index(i)))
		}
	}

	for _, row := range rows {
		id, zero := pk.ValueOf(stmt.Context, row)
		if zero {
			continue
		}
		stored := reflect.New(stmt.Schema.ModelType)
		err := stmt.DB.Session(&gorm.Session{NewDB: true}).
			WithContext(stmt.Context).
			Unscoped().
			Select(names).
			Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: pk.DBName}, Value: id}).
			Take(stored.Interface()).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load stored %s: %w", stmt.Table, err)
		}
		for _, field := range fields {
			current, _ := field.ValueOf(stmt.Context, row)
			previous, _ := field.ValueOf(stmt.Context, stored.Elem())
			if !reflect.DeepEqual(current, previous) {
				return &models.ImmutableFieldError{Field: field.DBName}
			}
		}
	}
	return nil
}

// writes reports whether the statement sets field.
func writes(stmt *gorm.Statement, field *schema.Field) bool {
	for _, omit := range stmt.Omits {
		if omit == field.DBName || omit == field.Name {
			return false
		}
	}
	if !restricted(stmt) {
		return true
	}
	for _, sel := range stmt.Selects {
		if sel == field.DBName || sel == field.Name {
			return true
		}
	}
	return false
}
