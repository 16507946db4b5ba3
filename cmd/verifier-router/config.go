package main

import (
	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/boundless-xyz/risc0-solana/pkg/rabbitmq"
	"github.com/boundless-xyz/risc0-solana/pkg/utilities"
)

const defaultConnectionString = "file:verifier_router.db?_busy_timeout=5000"

type RouterConfigJson struct {
	LoggerConf   logger.LoggerConfigJson     `json:"logger"`
	RabbitmqConf rabbitmq.RabbitmqConfigJson `json:"rabbitmq"`
	RestConf     RestConfigJson              `json:"rest"`
	DatabaseConf DatabaseConfigJson          `json:"database"`
	SolanaConf   SolanaConfigJson            `json:"solana"`
	Verifiers    []VerifierConfigJson        `json:"verifiers"`
}

func (rcj RouterConfigJson) ConvertToDomain() RouterConfig {
	rabbitmqConf := rcj.RabbitmqConf.ConvertToDomain()
	rabbitmqConf.Host = utilities.GetEnvOrDefault("RABBITMQ_HOST", rabbitmqConf.Host)

	return RouterConfig{
		LoggerConf:   rcj.LoggerConf.ConvertToDomain(),
		RabbitmqConf: rabbitmqConf,
		RestConf:     rcj.RestConf.ConvertToDomain(),
		DatabaseConf: rcj.DatabaseConf.ConvertToDomain(),
		SolanaConf:   rcj.SolanaConf.ConvertToDomain(),
		Verifiers:    utilities.ConvertJsonArrayToDomain[VerifierConfigJson, VerifierConfig](rcj.Verifiers),
	}
}

type RouterConfig struct {
	LoggerConf   logger.LoggerConfig
	RabbitmqConf rabbitmq.RabbitmqConfig
	RestConf     RestConfig
	DatabaseConf DatabaseConfig
	SolanaConf   SolanaConfig
	Verifiers    []VerifierConfig
}

func (rc RouterConfig) GetLoggerConfig() logger.LoggerConfig {
	return rc.LoggerConf
}

func (rc RouterConfig) GetRabbitmqConfig() rabbitmq.RabbitmqConfig {
	return rc.RabbitmqConf
}

func (rc RouterConfig) GetRestApiPort() uint16 {
	return rc.RestConf.Port
}

func (rc RouterConfig) GetDatabaseConnectionString() string {
	return rc.DatabaseConf.ConnectionString
}

type RestConfigJson struct {
	Port uint16 `json:"port"`
}

type RestConfig struct {
	Port uint16
}

func (rcj RestConfigJson) ConvertToDomain() RestConfig {
	return RestConfig{
		Port: utilities.Ternary(rcj.Port == 0, uint16(9000), rcj.Port),
	}
}

type DatabaseConfigJson struct {
	ConnectionString string `json:"connection_string"`
}

type DatabaseConfig struct {
	ConnectionString string
}

// ConvertToDomain lets DATABASE_CONNECTION_STRING override the file.
func (dcj DatabaseConfigJson) ConvertToDomain() DatabaseConfig {
	fallback := utilities.Ternary(dcj.ConnectionString == "", defaultConnectionString, dcj.ConnectionString)
	return DatabaseConfig{
		ConnectionString: utilities.GetEnvOrDefault("DATABASE_CONNECTION_STRING", fallback),
	}
}

type SolanaConfigJson struct {
	// RpcEndpoint enables on-chain upgrade authority checks when set.
	RpcEndpoint    string `json:"rpc_endpoint"`
	OutboxSchedule string `json:"outbox_schedule"`
}

type SolanaConfig struct {
	RpcEndpoint    string
	OutboxSchedule string
}

func (scj SolanaConfigJson) ConvertToDomain() SolanaConfig {
	return SolanaConfig{
		RpcEndpoint:    utilities.GetEnvOrDefault("SOLANA_RPC_ENDPOINT", scj.RpcEndpoint),
		OutboxSchedule: utilities.Ternary(scj.OutboxSchedule == "", "@every 1m", scj.OutboxSchedule),
	}
}

// VerifierConfigJson describes a Groth16 verifier program served by this router.
// ControlRoot and BN254ControlID default to the constants built into the binary.
// UpgradeAuthority is "router", a base58 key, or empty for an immutable program.
// Default marks the verifier used for seals encoded without a selector; when
// no entry sets it the last one listed is used.
type VerifierConfigJson struct {
	ProgramID        string `json:"program_id"`
	VerifyingKeyPath string `json:"verifying_key_path"`
	ControlRoot      string `json:"control_root"`
	BN254ControlID   string `json:"bn254_control_id"`
	UpgradeAuthority string `json:"upgrade_authority"`
	Default          bool   `json:"default"`
}

type VerifierConfig struct {
	ProgramID        string
	VerifyingKeyPath string
	ControlRoot      string
	BN254ControlID   string
	UpgradeAuthority string
	Default          bool
}

func (vcj VerifierConfigJson) ConvertToDomain() VerifierConfig {
	return VerifierConfig{
		ProgramID:        vcj.ProgramID,
		VerifyingKeyPath: vcj.VerifyingKeyPath,
		ControlRoot:      vcj.ControlRoot,
		BN254ControlID:   vcj.BN254ControlID,
		UpgradeAuthority: vcj.UpgradeAuthority,
		Default:          vcj.Default,
	}
}
