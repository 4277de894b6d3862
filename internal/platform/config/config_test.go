package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.ChatModel)
	assert.Equal(t, 0.7, cfg.OpenAI.Temperature)
	assert.Equal(t, 1000, cfg.OpenAI.MaxTokens)
	assert.Equal(t, 0.1, cfg.OpenAI.PresencePenalty)
	assert.Equal(t, 0.1, cfg.OpenAI.FrequencyPenalty)
	assert.Equal(t, 0, cfg.OpenAI.MaxRetries)
	assert.Equal(t, 10, cfg.Retrieval.TopN)
	assert.Equal(t, 20*time.Second, cfg.Retrieval.OracleTimeout)
	assert.True(t, cfg.Retrieval.TranslateQuery)
	assert.Nil(t, cfg.Retrieval.FollowUpTriggers)
	assert.Equal(t, "pgvector", cfg.Match.Backend)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoad_FromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "OPENAI_CHAT_MODEL=gpt-4o\n" +
		"FOLLOW_UP_TRIGGERS= jos , more,, \n" +
		"ORACLE_TIMEOUT=5s\n" +
		"TRANSLATE_QUERY=false\n" +
		"KNOWLEDGE_BASE_MAX_TOKENS=3000\n" +
		"MATCH_BACKEND=http\n" +
		"MATCH_URL=http://match.local/search\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	for _, key := range []string{"OPENAI_CHAT_MODEL", "FOLLOW_UP_TRIGGERS", "ORACLE_TIMEOUT", "TRANSLATE_QUERY", "KNOWLEDGE_BASE_MAX_TOKENS", "MATCH_BACKEND", "MATCH_URL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load(envFile)
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", cfg.OpenAI.ChatModel)
	assert.Equal(t, []string{"jos", "more"}, cfg.Retrieval.FollowUpTriggers)
	assert.Equal(t, 5*time.Second, cfg.Retrieval.OracleTimeout)
	assert.False(t, cfg.Retrieval.TranslateQuery)
	assert.Equal(t, 3000, cfg.Retrieval.KnowledgeBaseMaxTokens)
	assert.Equal(t, "http://match.local/search", cfg.Match.URL)
}

func TestLoad_Validation(t *testing.T) {
	t.Setenv("MATCH_BACKEND", "http")
	t.Setenv("MATCH_URL", "")

	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("MATCH_BACKEND", "elastic")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("MATCH_ENABLED", "false")
	_, err = Load("")
	assert.NoError(t, err)
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("SAFETY_TEST_INT", "nope")
	t.Setenv("SAFETY_TEST_DURATION", "1m")

	assert.Equal(t, 7, getEnvAsInt("SAFETY_TEST_INT", 7))
	assert.Equal(t, time.Minute, getEnvAsDuration("SAFETY_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a"}, getEnvAsList("SAFETY_TEST_UNSET", []string{"a"}))
}
