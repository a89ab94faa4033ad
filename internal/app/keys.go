package app

import (
	"fmt"

	"trust_ledger/internal/domain"
)

func feedbackKey(id uint64) string { return fmt.Sprintf("feedback:%d", id) }

func categoryKey(id uint64, category string) string {
	return fmt.Sprintf("feedback:%d:category:%s", id, category)
}

func ratingKey(provider domain.ActorID) string { return fmt.Sprintf("rating:%s", provider) }

func inspectorKey(id domain.ActorID) string { return fmt.Sprintf("inspector:%s", id) }

func inspectionKey(id uint64) string { return fmt.Sprintf("inspection:%d", id) }

func resultKey(id uint64, standard string) string {
	return fmt.Sprintf("inspection:%d:result:%s", id, standard)
}

func importedKey(provider, sourceID string) string {
	return fmt.Sprintf("import:%s:%s", provider, sourceID)
}
