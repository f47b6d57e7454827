package model

import (
	"github.com/google/uuid"
)

// Directory reference data. Static lookup tables, no behavior.

type State struct {
	Base
	Name    string `db:"name" json:"name"`
	GSTCode int    `db:"gst_code" json:"gst_code"`
}

type District struct {
	Base
	Name    string    `db:"name" json:"name"`
	StateID uuid.UUID `db:"state_id" json:"state_id"`
}

type City struct {
	Base
	Name       string    `db:"name" json:"name"`
	DistrictID uuid.UUID `db:"district_id" json:"district_id"`
}

type JobType struct {
	Base
	Option string `db:"option" json:"option"`
}

// OrderOption is a job-type variant an order can be tagged with.
type OrderOption struct {
	Base
	JobTypeID uuid.UUID `db:"job_type_id" json:"job_type_id"`
	Name      string    `db:"name" json:"name"`
}
