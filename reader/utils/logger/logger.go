package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"log/syslog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/metrico/tracebehavior/reader/config"
	"github.com/sirupsen/logrus"
)

type LogInfo logrus.Fields

var RLogs *rotatelogs.RotateLogs
var Logger = logrus.New()

// InitLogger configures the global logger from LOG_SETTINGS.
func InitLogger() {
	logSettings := &config.Cloki.Setting.LOG_SETTINGS
	if logSettings.Json {
		Logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Logger.SetFormatter(&logrus.TextFormatter{
			DisableTimestamp: false,
			DisableColors:    true,
		})
	}

	if logSettings.Qryn.Url != "" {
		hostname := ""
		if logSettings.Qryn.AddHostname {
			hostname, _ = os.Hostname()
		}

		headers := map[string]string{}
		for _, h := range strings.Split(logSettings.Qryn.Headers, ";;") {
			pair := strings.Split(h, ":")
			if len(pair) < 2 {
				continue
			}
			headers[pair[0]] = strings.Join(pair[1:], ":")
		}

		pushFmt := &lokiFormatter{
			formatter: Logger.Formatter,
			url:       logSettings.Qryn.Url,
			app:       logSettings.Qryn.App,
			hostname:  hostname,
			headers:   headers,
		}
		if pushFmt.app == "" {
			pushFmt.app = config.NAME_APPLICATION
		}
		Logger.SetFormatter(pushFmt)
		pushFmt.Run()
	}

	if logSettings.Stdout {
		Logger.SetOutput(os.Stdout)
		log.SetOutput(os.Stdout)
	}

	if logSettings.Level == "" {
		logSettings.Level = "error"
	}
	SetLoggerLevel(logSettings.Level)

	Logger.Info("init logging system")

	if !logSettings.Stdout && !logSettings.SysLog {
		configureLocalFileSystemHook()
	} else if !logSettings.Stdout {
		configureSyslogHook()
	}
}

func SetLoggerLevel(loglevelString string) {
	if logLevel, err := logrus.ParseLevel(loglevelString); err == nil {
		Logger.SetLevel(logLevel)
	} else {
		Logger.Error("Couldn't parse loglevel", loglevelString)
		Logger.SetLevel(logrus.ErrorLevel)
	}
}

func configureLocalFileSystemHook() {
	logPath := config.Cloki.Setting.LOG_SETTINGS.Path
	logName := config.Cloki.Setting.LOG_SETTINGS.Name
	var err error

	if configPath := os.Getenv("WEBAPPLOGPATH"); configPath != "" {
		logPath = configPath
	}
	if configName := os.Getenv("WEBAPPLOGNAME"); configName != "" {
		logName = configName
	}
	if logName == "" {
		logName = config.NAME_APPLICATION + ".log"
	}

	fileLogExtension := filepath.Ext(logName)
	fileLogBase := strings.TrimSuffix(logName, fileLogExtension)

	pathAllLog := filepath.Join(logPath, fileLogBase+"_%Y%m%d%H%M"+fileLogExtension)
	pathLog := filepath.Join(logPath, logName)

	RLogs, err = rotatelogs.New(
		pathAllLog,
		rotatelogs.WithLinkName(pathLog),
		rotatelogs.WithMaxAge(time.Duration(config.Cloki.Setting.LOG_SETTINGS.MaxAgeDays)*24*time.Hour),
		rotatelogs.WithRotationTime(time.Duration(config.Cloki.Setting.LOG_SETTINGS.RotationHours)*time.Hour),
	)
	if err != nil {
		Logger.Println("Local file system hook initialize fail")
		return
	}

	Logger.SetOutput(RLogs)
	log.SetOutput(RLogs)
}

func configureSyslogHook() {
	Logger.Println("Init syslog...")

	severity := getSeverityByName(config.Cloki.Setting.LOG_SETTINGS.SysLogLevel)
	syslogger, err := syslog.New(severity, config.NAME_APPLICATION)
	if err != nil {
		Logger.Println("Unable to connect to syslog:", err)
		return
	}

	Logger.SetOutput(syslogger)
	log.SetOutput(syslogger)
}

func Info(args ...interface{}) {
	Logger.Info(args...)
}

func Warn(args ...interface{}) {
	Logger.Warn(args...)
}

func Error(args ...interface{}) {
	Logger.Error(args...)
}

func Debug(args ...interface{}) {
	Logger.Debug(args...)
}

func WithFields(fields LogInfo) *logrus.Entry {
	return Logger.WithFields(logrus.Fields(fields))
}

func getSeverityByName(severity string) syslog.Priority {
	switch strings.ToUpper(severity) {
	case "LOG_EMERG":
		return syslog.LOG_EMERG
	case "LOG_ALERT":
		return syslog.LOG_ALERT
	case "LOG_CRIT":
		return syslog.LOG_CRIT
	case "LOG_ERR":
		return syslog.LOG_ERR
	case "LOG_WARNING":
		return syslog.LOG_WARNING
	case "LOG_NOTICE":
		return syslog.LOG_NOTICE
	case "LOG_DEBUG":
		return syslog.LOG_DEBUG
	default:
		return syslog.LOG_INFO
	}
}

// lokiFormatter formats entries with the wrapped formatter and pushes a copy
// of them to a Loki compatible push endpoint once a second.
type lokiFormatter struct {
	mtx        sync.Mutex
	formatter  logrus.Formatter
	bufferPush []*logrus.Entry
	timer      *time.Ticker
	url        string
	app        string
	hostname   string
	headers    map[string]string
}

type lokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func (q *lokiFormatter) Format(e *logrus.Entry) ([]byte, error) {
	q.mtx.Lock()
	q.bufferPush = append(q.bufferPush, e)
	q.mtx.Unlock()
	return q.formatter.Format(e)
}

func (q *lokiFormatter) flush() []byte {
	q.mtx.Lock()
	bufferPush := q.bufferPush
	q.bufferPush = nil
	q.mtx.Unlock()
	if len(bufferPush) < 1 {
		return nil
	}

	streams := map[string]*lokiStream{}
	var order []string
	for _, e := range bufferPush {
		stream := map[string]string{"app": q.app, "level": e.Level.String()}
		if q.hostname != "" {
			stream["hostname"] = q.hostname
		}
		strStream := fmt.Sprintf("%v", stream)
		if _, ok := streams[strStream]; !ok {
			streams[strStream] = &lokiStream{Stream: stream}
			order = append(order, strStream)
		}
		strValue, _ := q.formatter.Format(e)
		streams[strStream].Values = append(streams[strStream].Values,
			[]string{strconv.FormatInt(e.Time.UnixNano(), 10), string(strValue)})
	}

	arrStreams := make([]*lokiStream, 0, len(order))
	for _, k := range order {
		arrStreams = append(arrStreams, streams[k])
	}
	body, _ := json.Marshal(map[string][]*lokiStream{"streams": arrStreams})
	return body
}

func (q *lokiFormatter) Run() {
	q.timer = time.NewTicker(time.Second)
	go func() {
		for range q.timer.C {
			body := q.flush()
			if body == nil || q.url == "" {
				continue
			}
			go func() {
				req, _ := http.NewRequest("POST", q.url, bytes.NewReader(body))
				if req == nil {
					return
				}
				for k, v := range q.headers {
					req.Header.Set(k, v)
				}
				req.Header.Set("Content-Type", "application/json")
				res, err := http.DefaultClient.Do(req)
				if err == nil {
					res.Body.Close()
				}
			}()
		}
	}()
}
