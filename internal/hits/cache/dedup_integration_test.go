//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// DedupIntegrationTestSuite runs the guard against a real Redis.
type DedupIntegrationTestSuite struct {
	suite.Suite
	ctx            context.Context
	redisContainer *tcredis.RedisContainer
	redisClient    *redis.Client
}

func (s *DedupIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	redisContainer, err := tcredis.Run(s.ctx,
		"redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(s.T(), err)
	s.redisContainer = redisContainer

	endpoint, err := redisContainer.Endpoint(s.ctx, "")
	require.NoError(s.T(), err)

	s.redisClient = redis.NewClient(&redis.Options{Addr: endpoint})
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err())
}

func (s *DedupIntegrationTestSuite) TearDownSuite() {
	if s.redisClient != nil {
		s.redisClient.Close()
	}
	if s.redisContainer != nil {
		_ = s.redisContainer.Terminate(s.ctx)
	}
}

func (s *DedupIntegrationTestSuite) TearDownTest() {
	s.redisClient.FlushAll(s.ctx)
}

func (s *DedupIntegrationTestSuite) TestClaim_SameKeyTwice() {
	guard := NewDedupGuard(s.redisClient, time.Minute, zap.NewNop())

	fresh, err := guard.Claim(s.ctx, "UA-1|555|42|1700000000")
	s.Require().NoError(err)
	s.True(fresh)

	fresh, err = guard.Claim(s.ctx, "UA-1|555|42|1700000000")
	s.Require().NoError(err)
	s.False(fresh)

	ttl, err := s.redisClient.TTL(s.ctx, dedupPrefix+"UA-1|555|42|1700000000").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *DedupIntegrationTestSuite) TestRelease_AllowsClaimAgain() {
	guard := NewDedupGuard(s.redisClient, time.Minute, zap.NewNop())

	_, err := guard.Claim(s.ctx, "UA-1|555|43|1700000000")
	s.Require().NoError(err)
	s.Require().NoError(guard.Release(s.ctx, "UA-1|555|43|1700000000"))

	fresh, err := guard.Claim(s.ctx, "UA-1|555|43|1700000000")
	s.Require().NoError(err)
	s.True(fresh)
}

func TestDedupIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(DedupIntegrationTestSuite))
}
