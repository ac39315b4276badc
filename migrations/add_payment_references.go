package migrations

import (
	"database/sql"
	"fmt"
	"log"
)

// AddPaymentReferences ties coin purchases to the payment that paid for them.
// A reference can credit a wallet only once.
func AddPaymentReferences(db *sql.DB) error {
	exists, err := columnExists(db, "transactions", "reference")
	if err != nil {
		return err
	}
	if exists {
		log.Println("Column transactions.reference already exists, skipping")
	} else if _, err := db.Exec("ALTER TABLE transactions ADD COLUMN reference TEXT"); err != nil {
		return fmt.Errorf("failed to add transactions.reference: %w", err)
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_reference
		ON transactions(reference) WHERE reference IS NOT NULL`)
	if err != nil {
		return fmt.Errorf("failed to create reference index: %w", err)
	}
	return nil
}
