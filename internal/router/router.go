package router

import (
	"context"
	"net/http"
	"time"

	"clocker/backend/foundation/web"
	"clocker/backend/internal/auth"
	"clocker/backend/internal/middleware"
	"clocker/backend/internal/pkg/config"
	"clocker/backend/internal/pkg/repository/postgresql"
	"clocker/backend/internal/repository/postgres/attendance"
	"clocker/backend/internal/repository/postgres/clock"
	"clocker/backend/internal/repository/postgres/person"
	"clocker/backend/internal/repository/postgres/user"
	"clocker/backend/internal/repository/postgres/zone"
	redisrepo "clocker/backend/internal/repository/redis"
	"clocker/backend/internal/service"
	"clocker/backend/internal/service/clocking"
	"clocker/backend/internal/service/report"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	attendance_controller "clocker/backend/internal/controller/http/v1/attendance"
	auth_controller "clocker/backend/internal/controller/http/v1/auth"
	clock_controller "clocker/backend/internal/controller/http/v1/clock"
	file_controller "clocker/backend/internal/controller/http/v1/file"
	person_controller "clocker/backend/internal/controller/http/v1/person"
	report_controller "clocker/backend/internal/controller/http/v1/report"
	user_controller "clocker/backend/internal/controller/http/v1/user"
	zone_controller "clocker/backend/internal/controller/http/v1/zone"
)

const zoneCacheTTL = 5 * time.Minute

type Router struct {
	*web.App
	postgresDB *postgresql.Database
	redisDB    *redis.Client
	auth       *auth.Auth
	cfg        *config.Config
}

func NewRouter(
	app *web.App,
	postgresDB *postgresql.Database,
	redisDB *redis.Client,
	auth *auth.Auth,
	cfg *config.Config,
) *Router {
	return &Router{
		app,
		postgresDB,
		redisDB,
		auth,
		cfg,
	}
}

// Init wires repositories, services and controllers and registers the routes.
func (r Router) Init() error {
	loc, err := r.cfg.Location()
	if err != nil {
		return errors.Wrap(err, "loading time zone")
	}

	r.HandleMethodNotAllowed = true
	r.Use(middleware.CORS(r.cfg.AllowedOrigins))

	// - postgresql
	userPostgres := user.NewRepository(r.postgresDB)
	zonePostgres := zone.NewRepository(r.postgresDB)
	personPostgres := person.NewRepository(r.postgresDB)
	clockPostgres := clock.NewRepository(r.postgresDB)
	attendancePostgres := attendance.NewRepository(r.postgresDB)

	// - redis
	zoneCache := redisrepo.NewZoneCache(r.redisDB, zonePostgres, zoneCacheTTL)
	locker := redisrepo.NewLocker(r.redisDB, clocking.NewLocalLocker())

	// service
	storage := service.NewStorage(r.cfg.MediaDir)
	pairer := clocking.NewPairer(attendancePostgres, locker, loc)
	clockService := clocking.NewService(personPostgres, zoneCache, clockPostgres, storage, pairer, clocking.ServiceConfig{
		EnforceSchedule: r.cfg.ShouldEnforceSchedule(),
		PhotoRequired:   r.cfg.PhotoRequired,
		Location:        loc,
	})
	reportService := report.NewService(attendancePostgres, report.Config{
		Company:       r.cfg.CompanyName,
		MaxDays:       r.cfg.ReportMaxDays,
		OfficialEntry: r.cfg.OfficialEntry,
		Location:      loc,
	})

	// controller
	authController := auth_controller.NewController(userPostgres, r.auth)
	userController := user_controller.NewController(userPostgres)
	zoneController := zone_controller.NewController(zonePostgres, zoneCache, loc)
	personController := person_controller.NewController(personPostgres, zonePostgres, r.cfg.CompanyName)
	clockController := clock_controller.NewController(clockService, clockPostgres)
	attendanceController := attendance_controller.NewController(attendancePostgres)
	reportController := report_controller.NewController(reportService)
	fileController := file_controller.NewController(storage)

	admin := middleware.Authenticate(r.auth, auth.RoleAdmin)
	terminal := middleware.Authenticate(r.auth, auth.RoleAdmin, auth.RoleClock)

	r.Get("/api/v1/health", r.health)

	// #auth
	r.Post("/api/v1/sign-in", authController.SignIn)
	r.Post("/api/v1/refresh-token", authController.RefreshToken)

	r.Get("/media/*filepath", fileController.File)
	r.Handle(http.MethodHead, "/media/*filepath", fileController.File)

	// #user
	r.Get("/api/v1/user/list", userController.GetUserList, admin)
	r.Get("/api/v1/user/:id", userController.GetUserDetailById, admin)
	r.Post("/api/v1/user/create", userController.CreateUser, admin)
	r.Patch("/api/v1/user/:id", userController.UpdateUserColumns, admin)
	r.Delete("/api/v1/user/:id", userController.DeleteUser, admin)

	// #zone
	r.Get("/api/v1/zone/list", zoneController.GetList, admin)
	r.Get("/api/v1/zone/active", zoneController.GetActive, terminal)
	r.Get("/api/v1/zone/code/:code", zoneController.GetByCode, terminal)
	r.Get("/api/v1/zone/:id", zoneController.GetDetailById, admin)
	r.Get("/api/v1/zone/:id/check", zoneController.Check, terminal)
	r.Post("/api/v1/zone/create", zoneController.Create, admin)
	r.Patch("/api/v1/zone/:id", zoneController.UpdateColumns, admin)
	r.Delete("/api/v1/zone/:id", zoneController.Delete, admin)

	// #person
	r.Get("/api/v1/person/list", personController.GetList, admin)
	r.Get("/api/v1/person/qrcode-list", personController.GetQrCodeList, admin)
	r.Get("/api/v1/person/export", personController.Export, admin)
	r.Get("/api/v1/person/export-template", personController.ExportTemplate, admin)
	r.Get("/api/v1/person/:id", personController.GetDetailById, admin)
	r.Get("/api/v1/person/:id/qrcode", personController.GetQrCode, admin)
	r.Post("/api/v1/person/create", personController.Create, admin)
	r.Post("/api/v1/person/import", personController.Import, admin)
	r.Patch("/api/v1/person/:id", personController.UpdateColumns, admin)
	r.Delete("/api/v1/person/:id", personController.Delete, admin)

	// #clock
	r.Post("/api/v1/clock/capture", clockController.Capture, terminal)
	r.Post("/api/v1/clock/capture-qrcode", clockController.CaptureByQRCode, terminal)
	r.Get("/api/v1/clock/list", clockController.GetList, admin)
	r.Get("/api/v1/clock/:id", clockController.GetDetailById, admin)
	r.Delete("/api/v1/clock/:id", clockController.Delete, admin)

	// #attendance
	r.Get("/api/v1/attendance/list", attendanceController.GetList, admin)
	r.Get("/api/v1/attendance/:id", attendanceController.GetDetailById, admin)
	r.Delete("/api/v1/attendance/:id", attendanceController.Delete, admin)

	// #report
	r.Get("/api/v1/report", reportController.Get, admin)

	return nil
}

func (r Router) health(c *web.Context) error {
	ctx, cancel := context.WithTimeout(c.Ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"postgres": "ok", "redis": "ok"}
	code := http.StatusOK

	if err := r.postgresDB.PingContext(ctx); err != nil {
		status["postgres"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	// Redis only degrades locking and zone caching.
	if err := r.redisDB.Ping(ctx).Err(); err != nil {
		status["redis"] = err.Error()
	}

	return c.Respond(map[string]interface{}{
		"data":   status,
		"status": code == http.StatusOK,
	}, code)
}
