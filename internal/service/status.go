package service

import (
	"fmt"

	"tenderbid/models"
)

// Допустимые переходы в строгом режиме. Повторная установка того же
// статуса разрешена всегда.
var (
	tenderTransitions = map[models.TenderStatus][]models.TenderStatus{
		models.TenderCreated:   {models.TenderPublished, models.TenderClosed},
		models.TenderPublished: {models.TenderClosed},
	}
	bidTransitions = map[models.BidStatus][]models.BidStatus{
		models.BidCreated:   {models.BidPublished, models.BidCanceled},
		models.BidPublished: {models.BidCanceled},
	}
)

func checkTransition[S ~string](strict bool, table map[S][]S, from, to S) error {
	if !strict || from == to {
		return nil
	}
	for _, next := range table[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: status transition %s -> %s", models.ErrBadRequest, from, to)
}
