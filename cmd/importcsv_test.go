package main

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const leadCSV = `Name,Title,Company,Company Type,Location,Funding Status,Keywords,Uses Invitro
Dr. Sarah Chen,Director of Toxicology,Vertex Pharmaceuticals,Biotech,"Boston, MA",Series B ($180M),DILI; organoid,true
Dr. James Wu,Principal Investigator,Stanford University,Academic,"Stanford, CA",,hepatotoxicity,no
,,,,,,,
`

func TestLeadsFromCSV(t *testing.T) {
	leads, err := leadsFromCSV(context.Background(), strings.NewReader(leadCSV))
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "Dr. Sarah Chen", leads[0].Name)
	assert.Equal(t, "Director of Toxicology", leads[0].Title)
	assert.Equal(t, "Vertex Pharmaceuticals", leads[0].Company)
	assert.Equal(t, "Biotech", leads[0].CompanyType)
	assert.Equal(t, "Boston, MA", leads[0].Location)
	assert.Equal(t, "Series B ($180M)", leads[0].FundingStatus)
	assert.Equal(t, []string{"DILI", "organoid"}, leads[0].PublicationKeywords)
	assert.True(t, leads[0].UsesInvitro)
	assert.Equal(t, "csv_import", leads[0].Source)

	assert.Equal(t, "Dr. James Wu", leads[1].Name)
	assert.Empty(t, leads[1].FundingStatus)
	assert.False(t, leads[1].UsesInvitro)
}

func TestLeadsFromCSV_UnknownColumnsIgnored(t *testing.T) {
	csv := "name,company,favorite_color\nDr. Ana Ruiz,Genentech,teal\n"

	leads, err := leadsFromCSV(context.Background(), strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Dr. Ana Ruiz", leads[0].Name)
	assert.Equal(t, "Genentech", leads[0].Company)
}

func TestLeadsFromCSV_Empty(t *testing.T) {
	leads, err := leadsFromCSV(context.Background(), strings.NewReader("name,company\n"))
	require.NoError(t, err)
	assert.Empty(t, leads)
}
