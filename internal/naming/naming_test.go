package naming

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		in   string
		mode Mode
		sep  string
		want string
	}{
		{name: "lower keeps digits on previous word", in: "My.Cool_Service2Name", mode: Lower, sep: ".", want: "my.cool_service2_name"},
		{name: "pascal", in: "My.Cool_Service2Name", mode: Pascal, sep: ".", want: "My.CoolService2Name"},
		{name: "upper", in: "My.Cool_Service2Name", mode: Upper, sep: ".", want: "MY.COOL_SERVICE2_NAME"},
		{name: "camel lowers only the first segment", in: "My.Cool_Service2Name", mode: CamelLower, sep: ".", want: "my.CoolService2Name"},
		{name: "preserve drops separators", in: "get_user-info", mode: Preserve, sep: ".", want: "getuserinfo"},
		{name: "path separators", in: "demo/v1\\user_service", mode: Lower, sep: "_", want: "demo_v1_user_service"},
		{name: "empty segments dropped", in: "..a..b.", mode: Lower, sep: ".", want: "a.b"},
		{name: "whitespace and hyphen", in: "list  items-now", mode: Pascal, sep: ".", want: "ListItemsNow"},
		{name: "pascal lowers the tail of each word", in: "HTTP_REQUEST", mode: Pascal, sep: ".", want: "HttpRequest"},
		{name: "leading digits", in: "2fa_code", mode: Upper, sep: ".", want: "2_FA_CODE"},
		{name: "empty input", in: "", mode: Lower, sep: ".", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Convert(tt.in, tt.mode, tt.sep))
		})
	}
}

func TestConvertIsDeterministic(t *testing.T) {
	for _, mode := range []Mode{Preserve, Lower, Upper, CamelLower, Pascal} {
		first := Identify("pkg.Some_Name42x", mode)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Identify("pkg.Some_Name42x", mode), mode.String())
		}
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "Cool_Service2Name", want: []string{"Cool", "Service", "2", "Name"}},
		{in: "__leading", want: []string{"leading"}},
		{in: "get-user  id_2x", want: []string{"get", "user", "id", "2", "x"}},
		{in: "123", want: []string{"123"}},
		{in: "plain", want: []string{"plain"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, Split(tt.in)); diff != "" {
			t.Errorf("Split(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestRules(t *testing.T) {
	assert.Equal(t, "demo_user_service", LowerRule("demo.user_service"))
	assert.Equal(t, "DEMO_USER_SERVICE", UpperRule("demo.user_service"))
	assert.Equal(t, "UserService", ToPascalCase("user_service"))
	assert.Equal(t, "userService", ToCamelCase("user-service"))
}

func TestParseMode(t *testing.T) {
	assert.Equal(t, Lower, ParseMode("snake"))
	assert.Equal(t, Upper, ParseMode("UPPER"))
	assert.Equal(t, CamelLower, ParseMode("camel"))
	assert.Equal(t, Pascal, ParseMode("pascal"))
	assert.Equal(t, Preserve, ParseMode("whatever"))
}
