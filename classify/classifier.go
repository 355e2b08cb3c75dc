package classify

import "strings"

// GeneralTopic is the fallback tag assigned when no keyword matches.
const GeneralTopic = "general"

// topic is a named topic with its matching keywords.
type topic struct {
	name     string
	keywords []string
}

// Config holds the keyword table used for classification. Topics keep
// their insertion order, which fixes the order of tags in Classify output.
// A Config is owned by its caller; mutation is expected only during setup,
// not while chunks are being classified concurrently.
type Config struct {
	topics []topic
}

// NewConfig creates an empty classification config.
func NewConfig() *Config {
	return &Config{}
}

// DefaultConfig returns the stock keyword table for infrastructure
// support conversations.
func DefaultConfig() *Config {
	c := NewConfig()
	c.AddTopic("vpn", "vpn", "network", "connection", "proxy", "tunnel", "zscaler")
	c.AddTopic("terraform", "terraform", "tf", "module", "provider", "state", "tfvars")
	c.AddTopic("iam", "iam", "role", "policy", "permission", "access", "saml", "federation")
	c.AddTopic("aws", "aws", "amazon", "s3", "ec2", "lambda", "cloudwatch", "bedrock")
	c.AddTopic("deployment", "deploy", "pipeline", "cicd", "jenkins", "github", "actions")
	c.AddTopic("troubleshooting", "error", "failed", "issue", "problem", "help", "fix", "broken")
	c.AddTopic("security", "security", "encrypt", "kms", "secrets", "credential", "token")
	c.AddTopic("cost", "cost", "billing", "finops", "budget", "spend", "savings")
	return c
}

// AddTopic appends keywords to a topic, creating the topic if it does not
// exist yet. New topics classify after all previously added ones.
func (c *Config) AddTopic(name string, keywords ...string) {
	for i := range c.topics {
		if c.topics[i].name == name {
			c.topics[i].keywords = append(c.topics[i].keywords, keywords...)
			return
		}
	}
	c.topics = append(c.topics, topic{name: name, keywords: keywords})
}

// Topics returns the configured topic names in classification order.
func (c *Config) Topics() []string {
	names := make([]string, len(c.topics))
	for i, t := range c.topics {
		names[i] = t.name
	}
	return names
}

// Keywords returns a copy of the keyword list for a topic, or nil if the
// topic is not configured.
func (c *Config) Keywords(name string) []string {
	for _, t := range c.topics {
		if t.name == name {
			out := make([]string, len(t.keywords))
			copy(out, t.keywords)
			return out
		}
	}
	return nil
}

// Classifier tags text with topics by case-insensitive keyword matching.
type Classifier struct {
	config *Config
}

// NewClassifier creates a classifier over the given config.
// A nil config uses DefaultConfig.
func NewClassifier(config *Config) *Classifier {
	if config == nil {
		config = DefaultConfig()
	}
	return &Classifier{config: config}
}

// Classify returns the topic tags matching the text, in config order.
// Each topic appears at most once no matter how many of its keywords
// match. Returns [GeneralTopic] when nothing matches; the result is
// never empty.
func (c *Classifier) Classify(text string) []string {
	lower := strings.ToLower(text)

	var tags []string
	for _, t := range c.config.topics {
		for _, keyword := range t.keywords {
			if strings.Contains(lower, keyword) {
				tags = append(tags, t.name)
				break
			}
		}
	}

	if len(tags) == 0 {
		return []string{GeneralTopic}
	}
	return tags
}

// PrimaryTopic returns the first tag that is not GeneralTopic, or
// GeneralTopic if there is none.
func PrimaryTopic(topics []string) string {
	for _, t := range topics {
		if t != GeneralTopic {
			return t
		}
	}
	return GeneralTopic
}
