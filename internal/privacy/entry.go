package privacy

import "findash/internal/core"

// AnonymizeEntryText replaces the sensitive labels of a row: category, each
// tag and the description. Amounts are left untouched.
func AnonymizeEntryText(tx core.Transaction) core.Transaction {
	tx.Category = AnonymizeCategory(tx.Category)
	tx.Tags = AnonymizeTags(tx.Tags)
	if tx.Description != "" {
		tx.Description = AnonymizedDescription
	}
	return tx
}

// NormalizeEntry scales every amount of a row with n.
func NormalizeEntry(tx core.Transaction, n Normalizer) core.Transaction {
	tx.ExpenseAmount = n.Apply(tx.ExpenseAmount)
	tx.IncomeAmount = n.Apply(tx.IncomeAmount)
	tx.InMainCurrency = n.Apply(tx.InMainCurrency)
	return tx
}

// AnonymizeEntry produces the fully anonymized view of a row.
func AnonymizeEntry(tx core.Transaction, n Normalizer) core.Transaction {
	return NormalizeEntry(AnonymizeEntryText(tx), n)
}

// GuestRow is the projection a guest sees before amounts are normalized.
// Income rows lose their labels; expense rows keep them.
func GuestRow(tx core.Transaction) core.Transaction {
	if tx.IsIncome() {
		return AnonymizeEntryText(tx)
	}
	return tx
}
