package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	clconfig "github.com/metrico/cloki-config"
	"github.com/metrico/cloki-config/config"
	"github.com/metrico/tracebehavior/reader"
	behaviorconfig "github.com/metrico/tracebehavior/reader/config"
	"github.com/metrico/tracebehavior/reader/utils/logger"
	"github.com/metrico/tracebehavior/reader/utils/middleware"
	"github.com/metrico/tracebehavior/shared/commonroutes"
)

var appFlags CommandLineFlags

// params for Flags
type CommandLineFlags struct {
	ShowHelpMessage *bool   `json:"help"`
	ShowVersion     *bool   `json:"version"`
	ConfigPath      *string `json:"config_path"`
}

/* init flags */
func initFlags() {
	appFlags.ShowHelpMessage = flag.Bool("help", false, "show help")
	appFlags.ShowVersion = flag.Bool("version", false, "show version")
	appFlags.ConfigPath = flag.String("config", "", "the path to the config file")
	flag.Parse()
}

func boolEnv(key string) (bool, error) {
	val := strings.ToLower(os.Getenv(key))
	for _, v := range []string{"true", "1", "yes", "y"} {
		if v == val {
			return true, nil
		}
	}
	for _, v := range []string{"false", "0", "no", "n", ""} {
		if v == val {
			return false, nil
		}
	}
	return false, fmt.Errorf("%s value must be one of [no, n, false, 0, yes, y, true, 1]", key)
}

func portCHEnv(cfg *clconfig.ClokiConfig) error {
	if len(cfg.Setting.DATABASE_DATA) > 0 {
		return nil
	}
	cfg.Setting.DATABASE_DATA = []config.ClokiBaseDataBase{{
		ReadTimeout:  30,
		WriteTimeout: 30,
	}}
	db := "cloki"
	if os.Getenv("CLICKHOUSE_DB") != "" {
		db = os.Getenv("CLICKHOUSE_DB")
	}
	cfg.Setting.DATABASE_DATA[0].Name = db
	if os.Getenv("CLUSTER_NAME") != "" {
		cfg.Setting.DATABASE_DATA[0].ClusterName = os.Getenv("CLUSTER_NAME")
	}
	server := "localhost"
	if os.Getenv("CLICKHOUSE_SERVER") != "" {
		server = os.Getenv("CLICKHOUSE_SERVER")
	}
	cfg.Setting.DATABASE_DATA[0].Host = server
	strPort := "9000"
	if os.Getenv("CLICKHOUSE_PORT") != "" {
		strPort = os.Getenv("CLICKHOUSE_PORT")
	}
	port, err := strconv.ParseUint(strPort, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}
	cfg.Setting.DATABASE_DATA[0].Port = uint32(port)
	if os.Getenv("CLICKHOUSE_AUTH") != "" {
		auth := strings.SplitN(os.Getenv("CLICKHOUSE_AUTH"), ":", 2)
		cfg.Setting.DATABASE_DATA[0].User = auth[0]
		if len(auth) > 1 {
			cfg.Setting.DATABASE_DATA[0].Password = auth[1]
		}
	}
	proto := os.Getenv("CLICKHOUSE_PROTO")
	cfg.Setting.DATABASE_DATA[0].Secure = proto == "https" || proto == "tls"
	if os.Getenv("SELF_SIGNED_CERT") != "" {
		insecureSkipVerify, err := boolEnv("SELF_SIGNED_CERT")
		if err != nil {
			return fmt.Errorf("invalid self_signed_cert value: %w", err)
		}
		cfg.Setting.DATABASE_DATA[0].InsecureSkipVerify = insecureSkipVerify
	}
	return nil
}

func portEnv(cfg *clconfig.ClokiConfig) error {
	err := portCHEnv(cfg)
	if err != nil {
		return err
	}
	if os.Getenv("CORS_ALLOW_ORIGIN") != "" {
		cfg.Setting.HTTP_SETTINGS.Cors.Enable = true
		cfg.Setting.HTTP_SETTINGS.Cors.Origin = os.Getenv("CORS_ALLOW_ORIGIN")
	}
	if os.Getenv("PORT") != "" {
		port, err := strconv.Atoi(os.Getenv("PORT"))
		if err != nil {
			return fmt.Errorf("invalid port number: %w", err)
		}
		cfg.Setting.HTTP_SETTINGS.Port = port
	}
	if os.Getenv("HOST") != "" {
		cfg.Setting.HTTP_SETTINGS.Host = os.Getenv("HOST")
	}
	if cfg.Setting.HTTP_SETTINGS.Host == "" {
		cfg.Setting.HTTP_SETTINGS.Host = "0.0.0.0"
	}
	if cfg.Setting.HTTP_SETTINGS.Port == 0 {
		cfg.Setting.HTTP_SETTINGS.Port = 3200
	}
	if os.Getenv("LOG_LEVEL") != "" {
		cfg.Setting.LOG_SETTINGS.Level = os.Getenv("LOG_LEVEL")
	}
	stdout, err := boolEnv("LOG_STDOUT")
	if err != nil {
		return err
	}
	if stdout {
		cfg.Setting.LOG_SETTINGS.Stdout = true
	}
	return nil
}

func main() {
	initFlags()
	if *appFlags.ShowHelpMessage {
		flag.Usage()
		return
	}
	if *appFlags.ShowVersion {
		fmt.Println(behaviorconfig.NAME_APPLICATION, commonroutes.Version)
		return
	}
	var configPaths []string
	if _, err := os.Stat(*appFlags.ConfigPath); err == nil {
		configPaths = append(configPaths, *appFlags.ConfigPath)
	}
	cfg := clconfig.New(clconfig.CLOKI_READER, configPaths, "", "")

	cfg.ReadConfig()

	err := portEnv(cfg)
	if err != nil {
		panic(err)
	}
	settings := behaviorconfig.DefaultBehaviorSettings()
	if err = behaviorconfig.PortBehaviorEnv(&settings); err != nil {
		panic(err)
	}

	app := mux.NewRouter()
	login, pass := settings.BasicAuthLogin, settings.BasicAuthPass
	if login == "" || pass == "" {
		login = cfg.Setting.AUTH_SETTINGS.BASIC.Username
		pass = cfg.Setting.AUTH_SETTINGS.BASIC.Password
	}
	if login != "" && pass != "" {
		app.Use(middleware.BasicAuthMiddleware(login, pass))
	}
	app.Use(middleware.AcceptEncodingMiddleware)
	if cfg.Setting.HTTP_SETTINGS.Cors.Enable {
		app.Use(middleware.CorsMiddleware(cfg.Setting.HTTP_SETTINGS.Cors.Origin))
	}
	app.Use(middleware.LoggingMiddleware("[{{.status}}] {{.method}} {{.url}} - LAT:{{.latency}}"))
	commonroutes.RegisterCommonRoutes(app)
	reader.Init(cfg, settings, app)

	initPyro()

	httpURL := net.JoinHostPort(cfg.Setting.HTTP_SETTINGS.Host, strconv.Itoa(cfg.Setting.HTTP_SETTINGS.Port))
	httpStart(app, httpURL)
}

func httpStart(server *mux.Router, httpURL string) {
	logger.Info("Starting service")
	listener, err := net.Listen("tcp", httpURL)
	if err != nil {
		logger.Error("Error creating listener:", err)
		panic(err)
	}
	logger.Info("Server is listening on ", httpURL)
	if err := http.Serve(listener, server); err != nil {
		logger.Error("Error serving:", err)
		panic(err)
	}
}
