// Package provision drives the post-registration bootstrap of remote
// resources for a new account: a private device, a wallet, and a
// wallet-credentials file written onto the device. The three calls run
// strictly in order; any failure rolls the local account back and
// surfaces a stage error.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cryptic-app/accounts/pkg/auth"
)

// walletFileName is the file written onto the fresh device holding the
// wallet credentials.
const walletFileName = "first.wallet"

// State is a step of the provisioning flow.
type State int

const (
	StateDeviceProvision State = iota
	StateWalletProvision
	StateFileWrite
	StateRollback
	StateDone
)

func (s State) String() string {
	switch s {
	case StateDeviceProvision:
		return "device-provision"
	case StateWalletProvision:
		return "wallet-provision"
	case StateFileWrite:
		return "file-write"
	case StateRollback:
		return "rollback"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StageError reports which provisioning stage failed, with the remote
// message when the failing response carried a parseable one.
type StageError struct {
	Stage   string
	Message string
}

func (e *StageError) Error() string { return e.Message }

// AccountRemover undoes the local side effects of a registration in a
// single transaction: the transient session row first, then the user row.
type AccountRemover interface {
	RemoveAccount(ctx context.Context, token string, userID uuid.UUID) error
}

// DeviceAPI is the device-service surface the orchestrator needs.
type DeviceAPI interface {
	CreatePrivateDevice(ctx context.Context, token string) (string, error)
	WriteFile(ctx context.Context, token, deviceID, filename, content string) error
}

// CurrencyAPI is the currency-service surface the orchestrator needs.
type CurrencyAPI interface {
	CreateWallet(ctx context.Context, token string) (Wallet, error)
}

// Orchestrator runs the device -> wallet -> file flow with linear
// compensation. It implements auth.Provisioner.
type Orchestrator struct {
	devices  DeviceAPI
	currency CurrencyAPI
	accounts AccountRemover
}

func NewOrchestrator(devices DeviceAPI, currency CurrencyAPI, accounts AccountRemover) *Orchestrator {
	return &Orchestrator{devices: devices, currency: currency, accounts: accounts}
}

// Provision advances through the stage machine. There are no retries:
// any non-200 reply or transport error is terminal for this attempt.
func (o *Orchestrator) Provision(ctx context.Context, userID uuid.UUID, token string) (auth.ProvisionResult, error) {
	state := StateDeviceProvision
	var deviceID string
	var wallet Wallet
	var failure *StageError

	for {
		switch state {
		case StateDeviceProvision:
			id, err := o.devices.CreatePrivateDevice(ctx, token)
			if err != nil {
				failure = stageError("device", "device", err)
				state = StateRollback
				continue
			}
			deviceID = id
			state = StateWalletProvision

		case StateWalletProvision:
			w, err := o.currency.CreateWallet(ctx, token)
			if err != nil {
				failure = stageError("wallet", "currency", err)
				state = StateRollback
				continue
			}
			wallet = w
			state = StateFileWrite

		case StateFileWrite:
			content := fmt.Sprintf("UUID:%s\nKEY:%s", wallet.ID, wallet.Key)
			if err := o.devices.WriteFile(ctx, token, deviceID, walletFileName, content); err != nil {
				failure = stageError("file", "file", err)
				state = StateRollback
				continue
			}
			state = StateDone

		case StateRollback:
			// Known gap: a device created before a wallet or file failure
			// stays behind on the remote side. Only local rows are compensated.
			if err := o.accounts.RemoveAccount(ctx, token, userID); err != nil {
				return auth.ProvisionResult{}, fmt.Errorf("rollback after %s failure: %w", failure.Stage, err)
			}
			return auth.ProvisionResult{}, failure

		case StateDone:
			return auth.ProvisionResult{DeviceID: deviceID, WalletID: wallet.ID}, nil
		}
	}
}

// stageError builds the user-visible failure for a stage. The message
// names the remote api; the nested remote message is included when the
// response carried one.
func stageError(stage, api string, err error) *StageError {
	var remote *RemoteError
	if errors.As(err, &remote) && remote.Message != "" {
		return &StageError{Stage: stage, Message: "Nested error from " + api + " api:" + remote.Message}
	}
	return &StageError{Stage: stage, Message: "error in " + api + " api"}
}
