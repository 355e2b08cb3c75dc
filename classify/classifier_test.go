package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(nil)

	t.Run("single topic", func(t *testing.T) {
		topics := c.Classify("the terraform state is locked")
		assert.Equal(t, []string{"terraform"}, topics)
	})

	t.Run("case insensitive", func(t *testing.T) {
		topics := c.Classify("VPN Tunnel Is Down")
		assert.Contains(t, topics, "vpn")
	})

	t.Run("topic appears once despite multiple keyword hits", func(t *testing.T) {
		topics := c.Classify("vpn proxy tunnel network")
		assert.Equal(t, []string{"vpn"}, topics)
	})

	t.Run("no match falls back to general", func(t *testing.T) {
		topics := c.Classify("lunch at noon?")
		assert.Equal(t, []string{GeneralTopic}, topics)
	})

	t.Run("empty text falls back to general", func(t *testing.T) {
		topics := c.Classify("")
		assert.Equal(t, []string{GeneralTopic}, topics)
	})

	t.Run("multiple topics keep config order", func(t *testing.T) {
		topics := c.Classify("iam role error on aws lambda deploy")
		assert.Equal(t, []string{"iam", "aws", "deployment", "troubleshooting"}, topics)
	})
}

func TestClassifier_ClassifyDeterministic(t *testing.T) {
	c := NewClassifier(nil)
	text := "terraform deploy failed with iam permission error on aws"

	first := c.Classify(text)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, c.Classify(text))
	}
}

func TestClassifier_CustomConfig(t *testing.T) {
	config := NewConfig()
	config.AddTopic("database", "postgres", "mysql", "migration")
	config.AddTopic("kubernetes", "k8s", "pod", "helm")

	c := NewClassifier(config)

	topics := c.Classify("the postgres pod keeps restarting")
	assert.Equal(t, []string{"database", "kubernetes"}, topics)

	// Default table is not active
	topics = c.Classify("terraform apply")
	assert.Equal(t, []string{GeneralTopic}, topics)
}

func TestConfig_AddTopic(t *testing.T) {
	config := NewConfig()
	config.AddTopic("database", "postgres")
	config.AddTopic("database", "mysql")

	require.Equal(t, []string{"database"}, config.Topics())
	assert.Equal(t, []string{"postgres", "mysql"}, config.Keywords("database"))
	assert.Nil(t, config.Keywords("missing"))
}

func TestPrimaryTopic(t *testing.T) {
	assert.Equal(t, "vpn", PrimaryTopic([]string{"vpn", "aws"}))
	assert.Equal(t, "aws", PrimaryTopic([]string{GeneralTopic, "aws"}))
	assert.Equal(t, GeneralTopic, PrimaryTopic([]string{GeneralTopic}))
	assert.Equal(t, GeneralTopic, PrimaryTopic(nil))
}
