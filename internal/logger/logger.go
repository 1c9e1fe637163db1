package logger

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/op/go-logging"
)

// Log es el logger compartido por todos los paquetes.
var Log = logging.MustGetLogger("almacen")

// Init configura el nivel (DEBUG, INFO, WARNING, ERROR) y el formato de salida.
// Un nivel inválido devuelve error y deja la configuración anterior.
func Init(level string) error {
	baseBackend := logging.NewLogBackend(os.Stdout, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s}     %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(level)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(logLevelCode, "")

	logging.SetBackend(backendLeveled)
	return nil
}

// RequestLogger registra método, ruta, estado y duración de cada request.
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}
		if status >= fiber.StatusInternalServerError {
			Log.Errorf("%s %s -> %d (%s)", c.Method(), c.OriginalURL(), status, time.Since(start))
		} else {
			Log.Debugf("%s %s -> %d (%s)", c.Method(), c.OriginalURL(), status, time.Since(start))
		}
		return err
	}
}
