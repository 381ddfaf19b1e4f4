package dns

import (
	"fmt"
	"reflect"
	"testing"
)

func TestMergeSPF(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		include  string
		want     string
	}{
		{
			name:    "no record",
			include: "spf.mailjet.com",
			want:    "v=spf1 include:spf.mailjet.com ~all",
		},
		{
			name:     "non spf value",
			existing: "google-site-verification=abc",
			include:  "spf.mailjet.com",
			want:     "v=spf1 include:spf.mailjet.com ~all",
		},
		{
			name:     "insert before all",
			existing: "v=spf1 include:_mailcust.gandi.net -all",
			include:  "spf.mailjet.com",
			want:     "v=spf1 include:_mailcust.gandi.net include:spf.mailjet.com -all",
		},
		{
			name:     "quoted record",
			existing: `"v=spf1 include:_mailcust.gandi.net ?all"`,
			include:  "spf.mailjet.com",
			want:     "v=spf1 include:_mailcust.gandi.net include:spf.mailjet.com ?all",
		},
		{
			name:     "already included",
			existing: "v=spf1 include:SPF.mailjet.com ~all",
			include:  "spf.mailjet.com",
			want:     "v=spf1 include:SPF.mailjet.com ~all",
		},
		{
			name:     "no all mechanism",
			existing: "v=spf1 mx",
			include:  "spf.mailjet.com",
			want:     "v=spf1 mx include:spf.mailjet.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MergeSPF(tt.existing, tt.include); got != tt.want {
				t.Errorf("MergeSPF() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMergeTXT(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		record string
		want   []string
	}{
		{
			name:   "empty rrset",
			record: "v=spf1 include:spf.mailjet.com ~all",
			want:   []string{`"v=spf1 include:spf.mailjet.com ~all"`},
		},
		{
			name:   "spf replaces spf and keeps others",
			values: []string{`"google-site-verification=abc"`, `"v=spf1 include:_mailcust.gandi.net ?all"`},
			record: "v=spf1 include:_mailcust.gandi.net include:spf.mailjet.com ?all",
			want: []string{
				`"google-site-verification=abc"`,
				`"v=spf1 include:_mailcust.gandi.net include:spf.mailjet.com ?all"`,
			},
		},
		{
			name:   "plain value is not duplicated",
			values: []string{`"k=rsa; p=abc"`},
			record: "k=rsa; p=abc",
			want:   []string{`"k=rsa; p=abc"`},
		},
		{
			name:   "plain value is added",
			values: []string{"v=spf1 mx ~all"},
			record: "mailjet_abc",
			want:   []string{`"v=spf1 mx ~all"`, `"mailjet_abc"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeTXT(tt.values, tt.record)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MergeTXT() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIncludes(t *testing.T) {
	got := Includes(`"v=spf1 include:a.example +include:b.example mx ~all"`)
	want := []string{"a.example", "b.example"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Includes() = %v, want %v", got, want)
	}
	if got := Includes("v=spf1 -all"); got != nil {
		t.Errorf("Includes() = %v, want nil", got)
	}
}

func TestFindSPF(t *testing.T) {
	spf, ok := FindSPF([]string{`"hello"`, `"v=spf1 mx ~all"`})
	if !ok || spf != "v=spf1 mx ~all" {
		t.Errorf("FindSPF() = %q, %v", spf, ok)
	}
	if _, ok := FindSPF([]string{`"hello"`}); ok {
		t.Error("FindSPF() found a record in a set without SPF")
	}
}

func TestRelativeName(t *testing.T) {
	tests := []struct {
		name, zone, want string
	}{
		{"mailjet._domainkey.example.com.", "example.com", "mailjet._domainkey"},
		{"example.com", "example.com", "@"},
		{"", "example.com", "@"},
		{"www", "example.com", "www"},
		{"Mailjet._DomainKey.Example.com", "example.com.", "mailjet._domainkey"},
	}

	for _, tt := range tests {
		if got := RelativeName(tt.name, tt.zone); got != tt.want {
			t.Errorf("RelativeName(%q, %q) = %q, want %q", tt.name, tt.zone, got, tt.want)
		}
	}
}

func ExampleMergeSPF() {
	fmt.Println(MergeSPF("v=spf1 include:_mailcust.gandi.net ?all", "spf.mailjet.com"))
	// Output: v=spf1 include:_mailcust.gandi.net include:spf.mailjet.com ?all
}
