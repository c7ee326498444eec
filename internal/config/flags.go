package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses the gateway flags from args.
//
// Flags:
//
//	-a gateway HTTP address in format [host]:[port]
//	-grpc-address health server address in format [host]:[port]
//	-d database DSN (SQLite path or postgres URL)
//	-u upstream POS API base URL
//	-c/-config JSON or YAML config file path
//	-push-sign-key push ingress signing key
//	-request-timeout inbound request timeout (e.g. "30s")
//	-upstream-timeout upstream request timeout (e.g. "10s")
//	-health-path upstream health endpoint
//	-sync-interval periodic sync interval
//	-refresh-interval API data refresh interval
//	-probe-interval connectivity probe interval
//	-manifest precache manifest path
//	-validate-payload validate queued write payloads
//	-validation-rule expr rule queued payloads must satisfy
func ParseFlags(args []string) (*StructuredConfig, error) {
	var serverAddress, grpcServerAddress NetAddress
	var databaseDSN, upstreamAddress, jsonConfigPath string
	var pushSignKey, healthPath, manifestPath, validationRule string
	var requestTimeout, upstreamTimeout time.Duration
	var syncInterval, refreshInterval, probeInterval time.Duration
	var validatePayload bool

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcServerAddress, "grpc-address", "Net grpc health address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&upstreamAddress, "u", "", "Upstream POS API base URL")
	fs.StringVar(&jsonConfigPath, "c", "", "Config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "Config file path (alias)")
	fs.StringVar(&pushSignKey, "push-sign-key", "", "Push ingress signing key")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.DurationVar(&upstreamTimeout, "upstream-timeout", 0, "Upstream timeout (e.g., 10s)")
	fs.StringVar(&healthPath, "health-path", "", "Upstream health path")
	fs.DurationVar(&syncInterval, "sync-interval", 0, "Periodic sync interval")
	fs.DurationVar(&refreshInterval, "refresh-interval", 0, "API data refresh interval")
	fs.DurationVar(&probeInterval, "probe-interval", 0, "Connectivity probe interval")
	fs.StringVar(&manifestPath, "manifest", "", "Precache manifest path")
	fs.BoolVar(&validatePayload, "validate-payload", false, "Validate queued write payloads")
	fs.StringVar(&validationRule, "validation-rule", "", "Queued payload validation rule")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			PushSignKey: pushSignKey,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    upstreamAddress,
			RequestTimeout: upstreamTimeout,
			HealthPath:     healthPath,
		},
		Workers: Workers{
			SyncInterval:    syncInterval,
			RefreshInterval: refreshInterval,
			ProbeInterval:   probeInterval,
		},
		Cache: Cache{
			ManifestPath: manifestPath,
		},
		Queue: Queue{
			ValidatePayload: validatePayload,
			ValidationRule:  validationRule,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string, or "" for an unset address.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses host:port. The host must be "localhost" or an IP address.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && net.ParseIP(host) == nil {
		return errors.New("incorrect IP-address provided")
	}

	a.Host = host
	a.Port = port
	return nil
}
