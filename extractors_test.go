package versionboard

import (
	"errors"
	"reflect"
	"testing"
)

func extractAPI(t *testing.T, ex Extractor, doc string) []string {
	t.Helper()
	got, err := ex.Extract(StructuredPayload([]byte(doc)))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	return got
}

func TestRecords(t *testing.T) {
	doc := `{"KafkaVersions": [
		{"Version": "1.1.1", "Status": "DEPRECATED"},
		{"Version": "2.8.1", "Status": "ACTIVE"},
		{"Status": "ACTIVE"},
		{"Version": "3.5.1", "Status": "ACTIVE"}
	]}`
	ex := Records("kafka", "KafkaVersions", Equals("Status", "ACTIVE"), Field("Version"))

	got := extractAPI(t, ex, doc)
	want := []string{"2.8.1", "3.5.1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Records() = %v, want %v", got, want)
	}
}

func TestRecords_MissingArray(t *testing.T) {
	ex := Records("kafka", "KafkaVersions", nil, Field("Version"))

	_, err := ex.Extract(StructuredPayload([]byte(`{"Other": []}`)))
	if !errors.Is(err, ErrParse) {
		t.Errorf("Extract() error = %v, want ErrParse", err)
	}
}

func TestRecords_EmptyArrayIsNotAnError(t *testing.T) {
	ex := Records("kafka", "KafkaVersions", nil, Field("Version"))

	got := extractAPI(t, ex, `{"KafkaVersions": []}`)
	if len(got) != 0 {
		t.Errorf("Records() = %v, want empty", got)
	}
}

func TestStructuredExtractor_InvalidPayload(t *testing.T) {
	ex := Strings("opensearch", "Versions")

	if _, err := ex.Extract(StructuredPayload([]byte(`{not json`))); !errors.Is(err, ErrParse) {
		t.Errorf("invalid JSON error = %v, want ErrParse", err)
	}
	if _, err := ex.Extract(MarkupPayload("<html></html>")); !errors.Is(err, ErrParse) {
		t.Errorf("html payload error = %v, want ErrParse", err)
	}
}

func TestStrings(t *testing.T) {
	got := extractAPI(t, Strings("opensearch", "Versions"), `{"Versions": ["OpenSearch_2.11", "Elasticsearch_7.10", ""]}`)

	want := []string{"OpenSearch_2.11", "Elasticsearch_7.10"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Strings() = %v, want %v", got, want)
	}
}

func TestNestedRecords(t *testing.T) {
	doc := `{"BrokerEngineTypes": [
		{"EngineType": "ACTIVEMQ", "EngineVersions": [{"Name": "5.18"}, {"Name": "5.17.6"}]},
		{"EngineType": "RABBITMQ", "EngineVersions": [{"Name": "3.12.13"}]}
	]}`
	ex := NestedRecords("mq", "BrokerEngineTypes", Equals("EngineType", "RABBITMQ"), "EngineVersions", Field("Name"))

	got := extractAPI(t, ex, doc)
	if !reflect.DeepEqual(got, []string{"3.12.13"}) {
		t.Errorf("NestedRecords() = %v, want [3.12.13]", got)
	}
}

func TestEngineVersions(t *testing.T) {
	tests := []struct {
		name   string
		engine string
		doc    string
		want   []string
	}{
		{
			name:   "postgres filter",
			engine: "postgres",
			doc: `{"DBEngineVersions": [
				{"Engine": "postgres", "EngineVersion": "9.6.24"},
				{"Engine": "mysql", "EngineVersion": "8.0.35"},
				{"Engine": "postgres", "EngineVersion": "15.2"}
			]}`,
			want: []string{"9.6.24", "15.2"},
		},
		{
			name:   "cache engines",
			engine: "redis",
			doc: `{"CacheEngineVersions": [
				{"Engine": "memcached", "EngineVersion": "1.6.22"},
				{"Engine": "redis", "EngineVersion": "7.1"}
			]}`,
			want: []string{"7.1"},
		},
		{
			name:   "no matching engine",
			engine: "oracle-ee",
			doc:    `{"DBEngineVersions": [{"Engine": "mysql", "EngineVersion": "8.0.35"}]}`,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractAPI(t, EngineVersions(tt.engine), tt.doc)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("EngineVersions(%q) = %v, want %v", tt.engine, got, tt.want)
			}
		})
	}
}

func TestEngineVersions_UnknownShape(t *testing.T) {
	_, err := EngineVersions("redis").Extract(StructuredPayload([]byte(`{"Engines": []}`)))
	if !errors.Is(err, ErrParse) {
		t.Errorf("Extract() error = %v, want ErrParse", err)
	}
}

func TestEngineNames(t *testing.T) {
	doc := `{"DBEngineVersions": [
		{"Engine": "postgres", "EngineVersion": "9.6.24"},
		{"Engine": "mysql", "EngineVersion": "8.0.35"},
		{"Engine": "postgres", "EngineVersion": "15.2"}
	]}`

	got := extractAPI(t, EngineNames(), doc)
	want := []string{"postgres", "mysql", "postgres"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EngineNames() = %v, want %v", got, want)
	}
}

func TestPlatformVersion(t *testing.T) {
	tests := []struct {
		label    string
		platform string
		want     string
		ok       bool
	}{
		{"64bit Amazon Linux 2 running Python 3.8", "Python ", "3.8", true},
		{"64bit Amazon Linux 2023 v5.0.2 running Tomcat 10 Corretto 17", "Tomcat ", "10 Corretto 17", true},
		{"64bit Amazon Linux 2023 v6.0.5 running Node.js 20", "Node.js ", "20", true},
		{"64bit Amazon Linux 2 running Python 3.8", "Ruby ", "", false},
		{"Python 3.8 without a running marker", "Python ", "", false},
	}

	for _, tt := range tests {
		got, ok := PlatformVersion(tt.label, tt.platform)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PlatformVersion(%q, %q) = %q, %v, want %q, %v", tt.label, tt.platform, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPlatformStack(t *testing.T) {
	doc := `{"SolutionStacks": [
		"64bit Amazon Linux 2023 v4.0.6 running Python 3.11",
		"64bit Amazon Linux 2023 v4.0.5 running Ruby 3.2",
		"64bit Amazon Linux 2 v3.5.9 running Python 3.8"
	]}`

	got := extractAPI(t, PlatformStack("SolutionStacks", "Python "), doc)
	want := []string{"3.11", "3.8"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PlatformStack() = %v, want %v", got, want)
	}
}

func TestJoinFields(t *testing.T) {
	doc := `{"Blueprints": [
		{"Name": "WordPress", "Type": "app", "Version": "6.4.2"},
		{"Name": "Ubuntu", "Type": "os", "Version": "22.04 LTS"},
		{"Name": "Broken", "Type": "app"}
	]}`
	ex := Records("lightsail", "Blueprints", Equals("Type", "app"), JoinFields(" ", "Name", "Version"))

	got := extractAPI(t, ex, doc)
	if !reflect.DeepEqual(got, []string{"WordPress 6.4.2"}) {
		t.Errorf("JoinFields() = %v, want [WordPress 6.4.2]", got)
	}
}

func TestAll(t *testing.T) {
	doc := `{"Items": [
		{"A": "x", "B": "y", "V": "1"},
		{"A": "x", "B": "z", "V": "2"}
	]}`
	ex := Records("all", "Items", All(Equals("A", "x"), Equals("B", "z")), Field("V"))

	got := extractAPI(t, ex, doc)
	if !reflect.DeepEqual(got, []string{"2"}) {
		t.Errorf("All() = %v, want [2]", got)
	}
}
