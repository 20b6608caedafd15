package dig_container

import (
	"fmt"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/rhazelina/qr-absence-sub000/apps/api/echo"
	"github.com/rhazelina/qr-absence-sub000/core"
	"github.com/rhazelina/qr-absence-sub000/core/leave"
	"github.com/rhazelina/qr-absence-sub000/core/session"
	emailsvc "github.com/rhazelina/qr-absence-sub000/services/email"
	"github.com/rhazelina/qr-absence-sub000/services/evidence"
	logsvc "github.com/rhazelina/qr-absence-sub000/services/logger"
	"github.com/rhazelina/qr-absence-sub000/services/telemetry"
	"github.com/rhazelina/qr-absence-sub000/storage/database"
	inmemdb "github.com/rhazelina/qr-absence-sub000/storage/database/inmem"
	sqlxrepos "github.com/rhazelina/qr-absence-sub000/storage/database/sqlx"
)

// memoryEngine runs the API without a database: leave records live as long as the process.
const memoryEngine = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type ServerParam struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	Sessions   *session.Registry
	LeaveSvc   *leave.Service
	Metrics    *telemetry.Metrics
	Validate   *validator.Validate
	Translator ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	return logsvc.NewRollbarLogger(stdLogger, conf)
}

// newDB returns nil with the memory engine.
func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	if conf.Database.Engine == memoryEngine {
		loggerParam.Logger.Warn("no database configured, leave records are kept in memory")
		return nil
	}

	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newLeaveRepository(db *sqlx.DB) leave.Repository {
	if db == nil {
		return inmemdb.NewLeaveRepository()
	}
	return sqlxrepos.NewLeaveRepository(db)
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.Mail.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newEvidenceStore(conf *core.Config, logger core.Logger) evidence.Store {
	store, err := evidence.New(conf.Evidence)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up evidence store: %v", err), err)
	}
	return store
}

func newNotifier(conf *core.Config, mailSvc core.EmailService, store leave.EvidenceOpener, logger core.Logger) leave.Notifier {
	notifier, err := leave.NewMailNotifier(mailSvc, store, conf.Mail.LeaveRecipients...)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up leave notifier: %v", err), err)
	}
	return notifier
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newServer(p ServerParam) *echoapi.Server {
	return echoapi.NewServer(echoapi.Deps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		Sessions:   p.Sessions,
		LeaveSvc:   p.LeaveSvc,
		Metrics:    p.Metrics,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newLeaveRepository))
	must(c.Provide(newEmailService))
	must(c.Provide(newEvidenceStore, dig.As(new(leave.EvidenceStore), new(leave.EvidenceOpener))))
	must(c.Provide(newNotifier))
	must(c.Provide(validator.New))
	must(c.Provide(newTranslator))
	must(c.Provide(leave.NewService))
	must(c.Provide(session.NewRegistry))
	must(c.Provide(telemetry.NewMetrics))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
