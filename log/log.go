package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	diagLog     zerolog.Logger
	diagFile    *os.File
	historyFile *os.File
	logMu       sync.Mutex
	logReady    bool
	pid         int
	dir         string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: --logpath flag
	if flagPath != "" {
		if !filepath.IsAbs(flagPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, flagPath), nil
		}
		return flagPath, nil
	}

	// Priority 2: HUM_LOG_PATH environment variable
	envPath := os.Getenv("HUM_LOG_PATH")
	if envPath != "" {
		if !filepath.IsAbs(envPath) {
			wd, err := os.Getwd()
			if err != nil {
				return "", err
			}
			return filepath.Join(wd, envPath), nil
		}
		return envPath, nil
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	pid = os.Getpid()

	var err error

	diagPath := filepath.Join(dir, "diagnostics_log.txt")
	diagFile, err = os.OpenFile(diagPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	historyPath := filepath.Join(dir, "sessions_log.txt")
	historyFile, err = os.OpenFile(historyPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", pid).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if historyFile != nil {
		historyFile.Close()
		historyFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func ToneStart(carrier, beat, left, right, volume float64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("carrier_hz", carrier).
		Float64("beat_hz", beat).
		Float64("left_hz", left).
		Float64("right_hz", right).
		Float64("volume", volume).
		Msg("tone_start")
}

func ToneRetune(carrier, beat, left, right float64) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("carrier_hz", carrier).
		Float64("beat_hz", beat).
		Float64("left_hz", left).
		Float64("right_hz", right).
		Msg("tone_retune")
}

func ToneStop(played time.Duration) {
	if !logReady {
		return
	}
	diagLog.Info().
		Float64("played_s", played.Seconds()).
		Msg("tone_stop")
}

// ToneHistory appends one line per finished tone session to sessions_log.txt.
func ToneHistory(carrier, beat float64, played time.Duration) {
	if !logReady {
		return
	}
	logMu.Lock()
	defer logMu.Unlock()
	line := fmt.Sprintf("%s\t[%d]\tcarrier=%g\tbeat=%g\tplayed=%s\n",
		time.Now().Format("2006-01-02 15:04:05"), pid, carrier, beat, played.Round(time.Second))
	historyFile.WriteString(line)
}

func TimerEvent(name, event string, remaining int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("timer", name).
		Int("remaining_s", remaining).
		Msg("timer_" + event)
}

func SessionStart(version, frontend string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("version", version).
		Str("frontend", frontend).
		Msg("session_start")
}

func SessionEnd(toneSessions int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("tone_sessions", toneSessions).
		Msg("session_end")
}
