package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOlapChange_Phase(t *testing.T) {
	cases := []struct {
		name string
		op   *OlapChange
		want Phase
	}{
		{"CreateTable is setup", &OlapChange{Kind: OpCreateTable}, PhaseSetup},
		{"DropTable is teardown", &OlapChange{Kind: OpDropTable}, PhaseTeardown},
		{"AddTableColumn is setup", &OlapChange{Kind: OpAddTableColumn}, PhaseSetup},
		{"DropTableColumn is teardown", &OlapChange{Kind: OpDropTableColumn}, PhaseTeardown},
		{"RawSql defaults to setup", &OlapChange{Kind: OpRawSql}, PhaseSetup},
		{"RawSql from a removal is teardown", &OlapChange{Kind: OpRawSql, RawSQLTeardown: true}, PhaseTeardown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.op.Phase())
		})
	}
}

func TestInfraChanges_OrderedOlapChanges_TeardownBeforeSetup(t *testing.T) {
	create := &OlapChange{Kind: OpCreateTable, Table: &Table{Name: "a"}}
	drop := &OlapChange{Kind: OpDropTable, Table: &Table{Name: "b"}}
	addCol := &OlapChange{Kind: OpAddTableColumn, Table: &Table{Name: "c"}}

	changes := &InfraChanges{OlapChanges: []*OlapChange{create, drop, addCol}}
	ordered := changes.OrderedOlapChanges()

	assert.Equal(t, []*OlapChange{drop, create, addCol}, ordered)
	assert.Equal(t, []*OlapChange{create, drop, addCol}, changes.OlapChanges, "original slice order is untouched")
}
