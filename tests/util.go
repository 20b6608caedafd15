package testutil

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
	"github.com/rhazelina/qr-absence-sub000/core/user"
	"github.com/rhazelina/qr-absence-sub000/services/evidence"
	logsvc "github.com/rhazelina/qr-absence-sub000/services/logger"
	inmemdb "github.com/rhazelina/qr-absence-sub000/storage/database/inmem"
)

// NewConfig returns the app config in test mode, with evidence kept under a temp dir.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	conf := core.NewConfig()
	conf.Env = "TEST"
	conf.Debug = false
	conf.TestMode = true
	conf.Evidence.Backend = "local"
	conf.Evidence.Dir = t.TempDir()
	conf.Evidence.MaxUploadMBytes = 1
	return conf
}

// NewValidator returns a validator with every app rule and translation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	leave.InitValidators(validate, translator)
	return validate, translator
}

// NewLeaveService wires a leave service on an in-memory repository and a local evidence store.
func NewLeaveService(t *testing.T, conf *core.Config, validate *validator.Validate, notifier leave.Notifier) (*leave.Service, leave.Repository) {
	t.Helper()
	store, err := evidence.New(conf.Evidence)
	if err != nil {
		t.Fatalf("NewLeaveService() failed: %v", err)
	}
	repo := inmemdb.NewLeaveRepository()
	return leave.NewService(repo, store, notifier, validate, logsvc.NewLoggerMock()), repo
}

func NewTeacher(name string) user.Person {
	return user.Person{ID: "t-" + name, Name: name, Email: name + "@school.test", Roles: []string{user.RoleTeacher}}
}

func NewStudent(name string) user.Person {
	return user.Person{ID: "s-" + name, Name: name, Email: name + "@school.test", Roles: []string{user.RoleStudent}}
}

func NewAdmin(name string) user.Person {
	return user.Person{ID: "a-" + name, Name: name, Email: name + "@school.test", Roles: []string{user.RoleAdmin}}
}
