package main

import (
	"errors"
	"testing"
)

func TestTranslateType(t *testing.T) {
	cfg := defaultTypeConfig()

	tests := []struct {
		in   string
		want string
	}{
		// exact synonyms
		{"TEXT", "TEXT"},
		{"CLOB", "TEXT"},
		{"STRING", "TEXT"},
		{"TEXT(500)", "TEXT"}, // TEXT carries no length in MySQL
		{"CHARACTER", "CHAR"},
		{"CHARACTER(42)", "CHAR(42)"},
		{"NCHAR", "CHAR"},
		{"NCHAR(7)", "CHAR(7)"},
		{"NATIVE CHARACTER", "CHAR"},
		{"NATIVE CHARACTER(55)", "CHAR(55)"},
		{"DOUBLE PRECISION", "DOUBLE"},
		{"UNSIGNED BIG INT", "BIGINT UNSIGNED"},
		{"UNSIGNED BIG INT(20)", "BIGINT(20) UNSIGNED"},

		// integer affinity
		{"INTEGER", "INT(11)"},
		{"INT", "INT(11)"},
		{"INT1", "INT(11)"},
		{"INT2", "INT(11)"},
		{"INT(5)", "INT(5)"},
		{"INTEGER(7)", "INT(7)"},
		{"INT UNSIGNED", "INT(11) UNSIGNED"},

		// string affinity
		{"VARCHAR", "VARCHAR(255)"},
		{"VARCHAR(300)", "VARCHAR(300)"},
		{"NVARCHAR(80)", "VARCHAR(80)"},
		{"VARYING CHARACTER(60)", "VARCHAR(60)"},

		// numeric affinity: bare declarations widen, decorated ones pass through
		{"NUMERIC", "BIGINT(19)"},
		{"DECIMAL", "BIGINT(19)"},
		{"DECIMAL(10,2)", "DECIMAL(10,2)"},
		{"DECIMAL( 10 , 2 )", "DECIMAL(10,2)"},

		// identity fallback
		{"BLOB", "BLOB"},
		{"REAL", "REAL"},
		{"DATE", "DATE"},
		{"DATETIME", "DATETIME"},
		{"TIMESTAMP", "TIMESTAMP"},
		{"BOOLEAN", "BOOLEAN"},
		{"FLOAT(12)", "FLOAT(12)"},

		// normalization
		{"varchar(300)", "VARCHAR(300)"},
		{"  integer  ", "INT(11)"},
		{"native   character(9)", "CHAR(9)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := translateType(tt.in, cfg)
			if err != nil {
				t.Fatalf("translateType(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("translateType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestTranslateType_ConfiguredTargets exercises the configurable integer and
// string targets, including a string target with no digit run to substitute.
func TestTranslateType_ConfiguredTargets(t *testing.T) {
	configs := []TypeConfig{
		{IntegerType: "INT(11)", StringType: "VARCHAR(300)"},
		{IntegerType: "BIGINT(19)", StringType: "TEXT"},
		{IntegerType: "BIGINT(20) UNSIGNED", StringType: "CHAR(100)"},
	}

	tests := []struct {
		in   string
		want []string // per config, same order as configs
	}{
		{"INTEGER", []string{"INT(11)", "BIGINT(19)", "BIGINT(20) UNSIGNED"}},
		{"INT(9)", []string{"INT(9)", "BIGINT(9)", "BIGINT(9) UNSIGNED"}},
		{"VARCHAR", []string{"VARCHAR(300)", "TEXT", "CHAR(100)"}},
		{"VARCHAR(42)", []string{"VARCHAR(42)", "TEXT", "CHAR(42)"}},
		// NUMERIC widening is fixed, independent of the configured types
		{"NUMERIC", []string{"BIGINT(19)", "BIGINT(19)", "BIGINT(19)"}},
	}
	for _, tt := range tests {
		for i, cfg := range configs {
			got, err := translateType(tt.in, cfg)
			if err != nil {
				t.Fatalf("translateType(%q, %+v) unexpected error: %v", tt.in, cfg, err)
			}
			if got != tt.want[i] {
				t.Errorf("translateType(%q, %+v) = %q, want %q", tt.in, cfg, got, tt.want[i])
			}
		}
	}
}

func TestTranslateType_LengthOverridesConfiguredDigits(t *testing.T) {
	cfg := TypeConfig{IntegerType: "BIGINT(19) UNSIGNED", StringType: "VARCHAR(255)"}

	// The source length replaces the digit run in the configured type; it is
	// never appended as a second suffix.
	got, err := translateType("INT(20)", cfg)
	if err != nil {
		t.Fatal(err)
	}
	if got != "BIGINT(20) UNSIGNED" {
		t.Errorf("translateType(INT(20)) = %q, want %q", got, "BIGINT(20) UNSIGNED")
	}
}

func TestTranslateType_Invalid(t *testing.T) {
	cfg := defaultTypeConfig()

	for _, in := range []string{
		"",
		"   ",
		"(10)",
		"123",
		"INT(",
		"INT)",
		"VARCHAR(abc)",
		"INT(10,20,30)",
		"IN%T",
	} {
		t.Run(in, func(t *testing.T) {
			_, err := translateType(in, cfg)
			if err == nil {
				t.Fatalf("translateType(%q) expected error", in)
			}
			var invalid *InvalidColumnTypeError
			if !errors.As(err, &invalid) {
				t.Fatalf("translateType(%q) error %v, want *InvalidColumnTypeError", in, err)
			}
			if invalid.Declared != in {
				t.Errorf("InvalidColumnTypeError.Declared = %q, want %q", invalid.Declared, in)
			}
		})
	}
}

func TestTranslateType_Pure(t *testing.T) {
	cfg := defaultTypeConfig()

	for _, in := range []string{"VARCHAR(300)", "UNSIGNED BIG INT(20)", "NUMERIC"} {
		first, err := translateType(in, cfg)
		if err != nil {
			t.Fatal(err)
		}
		second, err := translateType(in, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if first != second {
			t.Errorf("translateType(%q) not stable: %q then %q", in, first, second)
		}
	}
}
