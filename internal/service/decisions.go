package service

import (
	"github.com/google/uuid"

	"tenderbid/models"
)

// MaxQuorum ограничивает число одобрений, нужное для закрытия тендера.
const MaxQuorum = 3

// Outcome итог по всем решениям, записанным для предложения.
type Outcome struct {
	Vetoed    bool
	Approvals int
	Quorum    int
}

// Closes сообщает, нужно ли закрыть тендер предложения.
func (o Outcome) Closes() bool {
	return !o.Vetoed && o.Approvals > 0 && o.Approvals >= o.Quorum
}

// Aggregate пересчитывает итог по полному набору решений, поэтому результат
// не зависит от порядка решений. Одобрения считаются по сотрудникам: повторное
// одобрение того же сотрудника кворум не увеличивает.
func Aggregate(decisions []models.BidDecision, responsibleCount int) Outcome {
	out := Outcome{Quorum: min(MaxQuorum, responsibleCount)}
	approvers := make(map[uuid.UUID]struct{}, len(decisions))
	for _, d := range decisions {
		switch d.Decision {
		case models.DecisionRejected:
			out.Vetoed = true
		case models.DecisionApproved:
			approvers[d.EmployeeID] = struct{}{}
		}
	}
	out.Approvals = len(approvers)
	return out
}
