package acct

import (
	"context"

	"github.com/Ali-Mohammed/openRadius-sub017/internal/radius"
)

// AccountingProcessor はAccounting処理のインターフェース
type AccountingProcessor interface {
	// ProcessStart はAcct-Start処理を行う
	ProcessStart(ctx context.Context, attrs *radius.AccountingAttributes, srcIP, traceID string) error
	// ProcessInterim はAcct-Interim処理を行う
	ProcessInterim(ctx context.Context, attrs *radius.AccountingAttributes, srcIP, traceID string) error
	// ProcessStop はAcct-Stop処理を行う
	ProcessStop(ctx context.Context, attrs *radius.AccountingAttributes, srcIP, traceID string) error
	// ProcessNASReset はAccounting-On/Off処理（NAS配下の一括解放）を行う
	ProcessNASReset(ctx context.Context, attrs *radius.AccountingAttributes, srcIP, traceID string) error
}
