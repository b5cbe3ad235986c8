package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleDoc = `{"traceID":"cli1","spans":[
	{"spanID":"a","operationName":"evt:1","startTime":5,"duration":1,"tags":[
		{"key":"sysmon.event_id","type":"string","value":"1"},
		{"key":"sysmon.pid","type":"int64","value":300},
		{"key":"Image","type":"string","value":"C:\\Windows\\System32\\powershell.exe"},
		{"key":"sigma.alert","type":"string","value":"Encoded PowerShell"}]},
	{"spanID":"b","operationName":"evt:5","startTime":9,"duration":1,"tags":[
		{"key":"sysmon.event_id","type":"string","value":"5"},
		{"key":"sysmon.pid","type":"int64","value":300},
		{"key":"Image","type":"string","value":"C:\\Windows\\System32\\powershell.exe"}]}]}`

func run(t *testing.T, stdin string, args ...string) (string, error) {
	cmd := newRoot("test")
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTimelineJSON(t *testing.T) {
	out, err := run(t, sampleDoc, "timeline")
	require.NoError(t, err)
	var got struct {
		Timeline []struct {
			BehaviorDescription string `json:"behaviorDescription"`
		} `json:"timeline"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Timeline, 2)
	assert.Equal(t, "powershell.exe 실행", got.Timeline[0].BehaviorDescription)
	assert.Equal(t, "powershell.exe 종료", got.Timeline[1].BehaviorDescription)
}

func TestMetricsYAML(t *testing.T) {
	out, err := run(t, sampleDoc, "metrics", "-o", "yaml")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &got))
	assert.Equal(t, "cli1", got["traceId"])
	assert.Equal(t, 2, got["totalSpans"])
	assert.Equal(t, 1, got["securityAlerts"])
	assert.Equal(t, []any{"Encoded PowerShell"}, got["alertTypesList"])
}

func TestLimitAndErrors(t *testing.T) {
	out, err := run(t, sampleDoc, "alerts", "--limit", "1")
	require.NoError(t, err)
	var alerts struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &alerts))
	assert.Equal(t, 1, alerts.Total)

	_, err = run(t, "{", "report")
	assert.Error(t, err)

	_, err = run(t, sampleDoc, "tree", "-o", "xml")
	assert.Error(t, err)

	_, err = run(t, sampleDoc, "tree", "--file", "does-not-exist.json")
	assert.Error(t, err)
}

func TestProcessEventsAndPatterns(t *testing.T) {
	out, err := run(t, sampleDoc, "events", "--pid", "300")
	require.NoError(t, err)
	var events struct {
		PID   string `json:"pid"`
		Total int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &events))
	assert.Equal(t, "300", events.PID)
	assert.Equal(t, 2, events.Total)

	_, err = run(t, sampleDoc, "events")
	assert.Error(t, err)

	out, err = run(t, sampleDoc, "patterns", "-o", "yaml")
	require.NoError(t, err)
	var patterns struct {
		AlertTypes []struct {
			Key      string `yaml:"key"`
			DocCount int    `yaml:"docCount"`
		} `yaml:"alertTypes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &patterns))
	require.Len(t, patterns.AlertTypes, 1)
	assert.Equal(t, "Encoded PowerShell", patterns.AlertTypes[0].Key)
	assert.Equal(t, 1, patterns.AlertTypes[0].DocCount)

	out, err = run(t, sampleDoc, "histogram")
	require.NoError(t, err)
	var hist struct {
		Interval string `json:"interval"`
		Buckets  []struct {
			DocCount int `json:"docCount"`
		} `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &hist))
	assert.Equal(t, "1s", hist.Interval)
	require.Len(t, hist.Buckets, 1)
	assert.Equal(t, 2, hist.Buckets[0].DocCount)
}
