package counter

import (
	"context"
	"strconv"

	"github.com/mlavin/allaccess/internal/pkg/cache"
)

const providerLoginsKey = "provider:counters:logins"

// AddProviderLogin increments the successful-login counter for a provider
// in Redis.
func AddProviderLogin(providerName string) error {
	ctx := context.Background()
	return cache.GetClient().HIncrBy(ctx, providerLoginsKey, providerName, 1).Err()
}

// ProviderLogins returns the per-provider login counts.
func ProviderLogins() (map[string]int64, error) {
	ctx := context.Background()
	data, err := cache.GetClient().HGetAll(ctx, providerLoginsKey).Result()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(data))
	for name, v := range data {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			continue
		}
		counts[name] = n
	}
	return counts, nil
}
