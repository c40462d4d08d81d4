// Package postgres implements the PostgreSQL persistence layer for Campus Placement Hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE STUDENTS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create students table
-- Version: 001

CREATE TABLE IF NOT EXISTS students (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    name VARCHAR(100) NOT NULL,
    roll_number VARCHAR(50) NOT NULL DEFAULT '',
    branch VARCHAR(30) NOT NULL,
    batch_year INTEGER NOT NULL,
    cgpa DECIMAL(4,2) NOT NULL CHECK (cgpa >= 0 AND cgpa <= 10),
    backlogs INTEGER NOT NULL DEFAULT 0 CHECK (backlogs >= 0),
    placed BOOLEAN NOT NULL DEFAULT FALSE,
    placed_opening_id UUID,
    placed_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_students_branch ON students(branch);
CREATE INDEX IF NOT EXISTS idx_students_batch_year ON students(batch_year);
CREATE INDEX IF NOT EXISTS idx_students_placed ON students(placed);
CREATE INDEX IF NOT EXISTS idx_students_cgpa ON students(cgpa DESC);
`

const migration001Down = `
DROP TABLE IF EXISTS students CASCADE;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE OPENINGS AND APPLICATION WINDOWS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create openings and application_windows tables
-- Version: 002

CREATE TABLE IF NOT EXISTS openings (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    company VARCHAR(200) NOT NULL,
    role VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status VARCHAR(20) NOT NULL DEFAULT 'active',
    deadline TIMESTAMP WITH TIME ZONE NOT NULL,
    positions INTEGER NOT NULL CHECK (positions > 0),
    criteria JSONB NOT NULL DEFAULT '{}'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_openings_status ON openings(status);
CREATE INDEX IF NOT EXISTS idx_openings_deadline ON openings(deadline);

-- Window times of day are stored as 'HH:MM' text in campus local time;
-- the application layer combines them with the dates.
CREATE TABLE IF NOT EXISTS application_windows (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    opening_id UUID NOT NULL REFERENCES openings(id) ON DELETE CASCADE,
    start_date DATE NOT NULL,
    start_time VARCHAR(5) NOT NULL,
    end_date DATE NOT NULL,
    end_time VARCHAR(5) NOT NULL,
    criteria JSONB NOT NULL DEFAULT '{}'::jsonb,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_windows_opening ON application_windows(opening_id);
CREATE INDEX IF NOT EXISTS idx_windows_active ON application_windows(active);
`

const migration002Down = `
DROP TABLE IF EXISTS application_windows CASCADE;
DROP TABLE IF EXISTS openings CASCADE;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE APPLICATIONS AND REVIEW HISTORY
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create applications and application_review_history tables
-- Version: 003

CREATE TABLE IF NOT EXISTS applications (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    student_id UUID NOT NULL REFERENCES students(id),
    opening_id UUID NOT NULL REFERENCES openings(id),
    window_id UUID NOT NULL REFERENCES application_windows(id),
    status VARCHAR(20) NOT NULL DEFAULT 'submitted',
    score DECIMAL(5,2) CHECK (score IS NULL OR (score >= 0 AND score <= 100)),
    round_number INTEGER NOT NULL DEFAULT 0,
    form_snapshot JSONB NOT NULL DEFAULT '{}'::jsonb,
    applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- One application per student per opening.
    CONSTRAINT uq_applications_student_opening UNIQUE (student_id, opening_id)
);

CREATE INDEX IF NOT EXISTS idx_applications_opening ON applications(opening_id);
CREATE INDEX IF NOT EXISTS idx_applications_student ON applications(student_id);
CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
CREATE INDEX IF NOT EXISTS idx_applications_round ON applications(opening_id, round_number);

-- Append-only audit trail; rows are never updated or deleted.
CREATE TABLE IF NOT EXISTS application_review_history (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    application_id UUID NOT NULL REFERENCES applications(id),
    reviewer_id UUID NOT NULL,
    change_kind VARCHAR(20) NOT NULL,
    old_status VARCHAR(20),
    new_status VARCHAR(20),
    old_score DECIMAL(5,2),
    new_score DECIMAL(5,2),
    comment TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_history_application ON application_review_history(application_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_history_reviewer ON application_review_history(reviewer_id, created_at DESC);
`

const migration003Down = `
DROP TABLE IF EXISTS application_review_history CASCADE;
DROP TABLE IF EXISTS applications CASCADE;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE RECRUITMENT ROUNDS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create recruitment_rounds table
-- Version: 004

CREATE TABLE IF NOT EXISTS recruitment_rounds (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    opening_id UUID NOT NULL REFERENCES openings(id) ON DELETE CASCADE,
    round_number INTEGER NOT NULL CHECK (round_number >= 1),
    name VARCHAR(100) NOT NULL,
    scheduled_at TIMESTAMP WITH TIME ZONE NOT NULL,
    max_candidates INTEGER CHECK (max_candidates IS NULL OR max_candidates > 0),
    current_candidates INTEGER NOT NULL DEFAULT 0 CHECK (current_candidates >= 0),
    status VARCHAR(20) NOT NULL DEFAULT 'upcoming',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    -- One round per number per opening.
    CONSTRAINT uq_rounds_opening_number UNIQUE (opening_id, round_number),

    -- The capacity bound holds even outside the conditional update path.
    CONSTRAINT chk_rounds_capacity CHECK (max_candidates IS NULL OR current_candidates <= max_candidates)
);

CREATE INDEX IF NOT EXISTS idx_rounds_opening ON recruitment_rounds(opening_id, round_number);
CREATE INDEX IF NOT EXISTS idx_rounds_status ON recruitment_rounds(status);
`

const migration004Down = `
DROP TABLE IF EXISTS recruitment_rounds CASCADE;
`
