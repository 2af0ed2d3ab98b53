package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'contract_status') THEN
			CREATE TYPE contract_status AS ENUM ('pending', 'open', 'in_discussion', 'booked', 'cancelled', 'closed');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'application_status') THEN
			CREATE TYPE application_status AS ENUM ('pending', 'accepted', 'rejected', 'withdrawn');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'agreement_status') THEN
			CREATE TYPE agreement_status AS ENUM ('awaiting_fees', 'pending_signature', 'fully_signed');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS contracts (
		id UUID PRIMARY KEY,
		contract_type_id VARCHAR(128) NOT NULL,
		institution_id UUID NOT NULL,
		title TEXT NOT NULL,
		status contract_status NOT NULL DEFAULT 'pending',
		start_date TIMESTAMPTZ NOT NULL,
		end_date TIMESTAMPTZ,
		positions_sought TEXT[] NOT NULL DEFAULT '{}',
		fields JSONB NOT NULL DEFAULT '{}',
		cancellation_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_institution_id ON contracts (institution_id);`,
	`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts (status);`,
	`CREATE TABLE IF NOT EXISTS contract_applications (
		id UUID PRIMARY KEY,
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		applicant_id UUID NOT NULL,
		status application_status NOT NULL DEFAULT 'pending',
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		accepted_candidate_id UUID,
		withdrawal_reason TEXT,
		decided_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_applications_contract_id ON contract_applications (contract_id);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_contract_applications_live
		ON contract_applications (contract_id, applicant_id)
		WHERE status IN ('pending', 'accepted');`,
	`CREATE TABLE IF NOT EXISTS application_candidates (
		id UUID PRIMARY KEY,
		application_id UUID NOT NULL REFERENCES contract_applications(id) ON DELETE CASCADE,
		person_ref TEXT NOT NULL,
		is_accepted BOOLEAN NOT NULL DEFAULT FALSE,
		proposed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_application_candidates_accepted
		ON application_candidates (application_id)
		WHERE is_accepted;`,
	`CREATE TABLE IF NOT EXISTS agreements (
		id UUID PRIMARY KEY,
		application_id UUID NOT NULL UNIQUE REFERENCES contract_applications(id) ON DELETE CASCADE,
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		agency_signed BOOLEAN NOT NULL DEFAULT FALSE,
		client_signed BOOLEAN NOT NULL DEFAULT FALSE,
		fees_required BOOLEAN NOT NULL DEFAULT FALSE,
		fees_entered BOOLEAN NOT NULL DEFAULT FALSE,
		fee_amount NUMERIC(18,2),
		status agreement_status NOT NULL,
		agency_signed_at TIMESTAMPTZ,
		client_signed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS contract_events (
		seq BIGSERIAL PRIMARY KEY,
		id UUID NOT NULL UNIQUE,
		type VARCHAR(64) NOT NULL,
		contract_id UUID NOT NULL REFERENCES contracts(id) ON DELETE CASCADE,
		application_id UUID,
		agreement_id UUID,
		actor_ref TEXT NOT NULL DEFAULT '',
		fee_flag BOOLEAN NOT NULL DEFAULT FALSE,
		reason TEXT NOT NULL DEFAULT '',
		at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_contract_events_contract_id ON contract_events (contract_id, seq);`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
