// Package reward decides which parts of an outcome deserve a notification.
package reward

import (
	"strings"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// DisplayableKinds are the reward families worth a toast. A reward type matches when its
// upper-cased name contains one of them (e.g. "BONUS_TOKEN", "point").
var DisplayableKinds = []string{"POINT", "TICKET", "COUPON", "KEY", "TOKEN"}

// Classify maps a raw reward descriptor to a display decision. Cosmetic-only, blank and
// zero-value rewards are never displayable.
func Classify(r *domain.Reward) domain.RewardClassification {
	if r == nil {
		return domain.RewardClassification{Reason: domain.ReasonNoReward}
	}

	kind := strings.ToUpper(strings.TrimSpace(r.Type))
	if kind == "" || kind == domain.RewardTypeNone {
		return domain.RewardClassification{Reason: domain.ReasonBlankType}
	}
	if r.Value <= 0 {
		return domain.RewardClassification{Reason: domain.ReasonNonPositiveValue}
	}
	for _, k := range DisplayableKinds {
		if strings.Contains(kind, k) {
			return domain.RewardClassification{Displayable: true, Reason: domain.ReasonDisplayable}
		}
	}
	return domain.RewardClassification{Reason: domain.ReasonUnsupportedType}
}

// LedgerNotice reports whether a play's ledger accrual deserves the "balance accrued"
// notice. It is independent of the headline reward.
func LedgerNotice(accrual int64) bool {
	return accrual > 0
}

// Notices are the auxiliary notifications one outcome triggers
type Notices struct {
	Toast          *domain.Reward
	Classification domain.RewardClassification
	LedgerAccrual  int64
}

// Any reports whether at least one notification fires
func (n Notices) Any() bool {
	return n.Toast != nil || n.LedgerAccrual > 0
}

// For derives both notification channels from one outcome's fields
func For(r *domain.Reward, ledgerAccrual int64) Notices {
	n := Notices{Classification: Classify(r)}
	if n.Classification.Displayable {
		toast := *r
		n.Toast = &toast
	}
	if LedgerNotice(ledgerAccrual) {
		n.LedgerAccrual = ledgerAccrual
	}
	return n
}

// Notifications is For applied to a received outcome
func Notifications[T any](o domain.Outcome[T]) Notices {
	return For(o.Reward, o.LedgerAccrual)
}
