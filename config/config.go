// Package config loads exchange credentials from the environment, the
// YAML backtest configuration, and the runtime state document that external
// operators edit between live cycles.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Env selects the trading environment. Testnet is the default; live must be
// requested explicitly and confirmed out-of-band.
type Env string

const (
	Testnet Env = "testnet"
	Live    Env = "live"
)

// LiveConfirmation is the exact sentinel LIVE_TRADING_CONFIRMATION must carry
// before a live (non-testnet) order may be submitted.
const LiveConfirmation = "YES_I_UNDERSTAND_THE_RISK"

// Credentials holds the API key pair and environment for the exchange client.
type Credentials struct {
	Env          Env
	APIKey       string
	APISecret    string
	Confirmation string
}

// FromEnv reads credentials for the environment selected by TRADING_ENV.
// Testnet keys fall back to the unprefixed BINANCE_API_KEY pair; live keys
// never fall back.
func FromEnv() (Credentials, error) {
	env := Env(strings.ToLower(strings.TrimSpace(os.Getenv("TRADING_ENV"))))
	if env == "" {
		env = Testnet
	}

	c := Credentials{
		Env:          env,
		Confirmation: os.Getenv("LIVE_TRADING_CONFIRMATION"),
	}

	switch env {
	case Testnet:
		c.APIKey = firstNonEmpty(os.Getenv("BINANCE_TESTNET_API_KEY"), os.Getenv("BINANCE_API_KEY"))
		c.APISecret = firstNonEmpty(os.Getenv("BINANCE_TESTNET_API_SECRET"), os.Getenv("BINANCE_API_SECRET"))
		if c.APIKey == "" || c.APISecret == "" {
			return Credentials{}, fmt.Errorf("missing BINANCE_TESTNET_API_KEY / BINANCE_TESTNET_API_SECRET")
		}

	case Live:
		c.APIKey = os.Getenv("BINANCE_LIVE_API_KEY")
		c.APISecret = os.Getenv("BINANCE_LIVE_API_SECRET")
		if c.APIKey == "" || c.APISecret == "" {
			return Credentials{}, fmt.Errorf("missing BINANCE_LIVE_API_KEY / BINANCE_LIVE_API_SECRET")
		}

	default:
		return Credentials{}, fmt.Errorf("unknown TRADING_ENV %q (want testnet or live)", env)
	}

	return c, nil
}

// EnsureLiveAllowed is the hard safety gate: in the live environment the
// confirmation sentinel must be present, otherwise trading fails closed.
// Testnet always passes.
func (c Credentials) EnsureLiveAllowed() error {
	if c.Env != Live {
		return nil
	}
	if c.Confirmation != LiveConfirmation {
		return fmt.Errorf(
			"live trading is BLOCKED: set LIVE_TRADING_CONFIRMATION=%s to enable", LiveConfirmation)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
