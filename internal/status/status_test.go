package status

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fixedRow(name, service, status, ports string) string {
	return fmt.Sprintf("%-20s%-20s%-20s%s", name, service, status, ports)
}

func samplePSTable() string {
	header := fixedRow("NAME", "SERVICE", "STATUS", "PORTS")
	row1 := fixedRow("demo-api-1", "api", "Up 2 hours", "0.0.0.0:8080->8080/tcp")
	row2 := fixedRow("demo-db-1", "db", "Exited (0) 1 day ago", "")
	return header + "\n" + row1 + "\n" + row2 + "\n"
}

func TestParsePSTable(t *testing.T) {
	services := ParsePSTable(samplePSTable())
	assert.Len(t, services, 2)

	assert.Equal(t, "api", services[0].Name)
	assert.Contains(t, services[0].Status, "Up")
	assert.True(t, services[0].Up())
	assert.Contains(t, services[0].Ports, "8080")

	assert.Equal(t, "db", services[1].Name)
	assert.False(t, services[1].Up())
}

func TestParsePSTableNoHeader(t *testing.T) {
	assert.Nil(t, ParsePSTable("no matching table here\n"))
}

func TestSummarizeCounts(t *testing.T) {
	statuses := []ProjectStatus{
		{Git: GitStatus{Dirty: true}},
		{Git: GitStatus{Behind: 2}},
		{DownedServices: []ServiceStatus{{Name: "api"}}},
	}
	s := Summarize(statuses)
	assert.Equal(t, 1, s.DirtyCount)
	assert.Equal(t, 1, s.BehindCount)
	assert.Equal(t, 1, s.DownedCount)
	assert.NotEmpty(t, s.Remediations)
}

func TestSummarizeNoIssuesNoRemediations(t *testing.T) {
	s := Summarize([]ProjectStatus{{}})
	assert.Empty(t, s.Remediations)
}
