package conf

import (
	"os"
	"reflect"
	"testing"
)

func TestSetAndGetEnv(t *testing.T) {
	type args struct {
		protect *testing.T
		key     string
		value   string
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			"Single value",
			args{t, "TEST_HELLO", "world"},
			false,
		},
		{
			"Multi-value separated by commas",
			args{t, "TEST_LIST", "One,Two,Three,Four"},
			false,
		},
		{
			"Path",
			args{t, "TEST_SOMEPATH", "../../FAKE/PATH"},
			false,
		},
		{
			"Number",
			args{t, "TEST_NUM", "1234"},
			false,
		},
		{
			"Boolean",
			args{t, "TEST_BOOL", "true"},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := SetEnv(tt.args.protect, tt.args.key, tt.args.value); (err != nil) != tt.wantErr {
				t.Errorf("SetEnv() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := GetEnv(tt.args.key); !reflect.DeepEqual(got, tt.args.value) {
				t.Errorf("GetEnv() = %v, want %v", got, tt.args.value)
			}
		})
	}
}

func TestUnsetEnv(t *testing.T) {
	if err := SetEnv(t, "TEST_UNSET", "to-be-removed"); err != nil {
		t.Fatal(err)
	}
	if err := UnsetEnv(t, "TEST_UNSET"); err != nil {
		t.Errorf("UnsetEnv() error = %v, state %v", err, state)
	}
	if val := GetEnv("TEST_UNSET"); val != "" {
		t.Errorf("UnsetEnv did not clear the key from conf. Value is %v", val)
	}
	if val := os.Getenv("TEST_UNSET"); val != "" {
		t.Errorf("UnsetEnv did not clear the key from EV. Value is %v", val)
	}
}

func Test_setup(t *testing.T) {
	var v = setup("./test")
	if got := v.GetString("TEST"); got != "true" {
		t.Errorf("setup() = %v, want %v", got, "true")
	}
}

func Test_findEnv(t *testing.T) {
	type args struct {
		location []string
	}
	tests := []struct {
		name  string
		args  args
		want  bool
		want1 string
	}{
		{
			"First location exists",
			args{[]string{"./test", "./FAKE"}},
			true,
			"./test",
		},
		{
			"Fall through to second location",
			args{[]string{"./FAKE", "./test"}},
			true,
			"./test",
		},
		{
			"No location exists",
			args{[]string{"./FAKE", "./FAKE2"}},
			false,
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, got1 := findEnv(tt.args.location)
			if got != tt.want {
				t.Errorf("findEnv() got = %v, want %v", got, tt.want)
			}
			if got1 != tt.want1 {
				t.Errorf("findEnv() got1 = %v, want %v", got1, tt.want1)
			}
		})
	}
}

func TestLookupEnv(t *testing.T) {
	type args struct {
		key string
	}
	tests := []struct {
		name  string
		args  args
		want  string
		want1 bool
	}{
		{
			"Query a variable that does not exist",
			args{"TEST_DOESNOTEXIST"},
			"",
			false,
		},
		{
			"Query a variable that exists but was unset",
			args{"TEST_CHANGE"},
			"",
			false,
		},
		{
			"Query a variable that only exists as environment var and not conf",
			args{"TEST_EVONLY"},
			"",
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {

			if tt.args.key == "TEST_CHANGE" {
				var _ = UnsetEnv(t, tt.args.key)
			}

			if tt.args.key == "TEST_EVONLY" {
				os.Setenv("TEST_EVONLY", "")
			}

			got, got1 := LookupEnv(tt.args.key)
			if got != tt.want {
				t.Errorf("LookupEnv() got = %v, want %v", got, tt.want)
			}
			if got1 != tt.want1 {
				t.Errorf("LookupEnv() got1 = %v, want %v", got1, tt.want1)
			}
		})
	}
}
