// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2025-present Datadog, Inc.

package resolver

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/DataDog/datadog-ping/common"
)

const cachePurgeInterval = 30 * time.Second

// addrCache maps a host name to its resolved address
var addrCache = cache.New(common.DefaultResolveCacheExpiration, cachePurgeInterval)

// getWithExpiration returns the value cached for key, or calls cb and caches
// its result for expire. Errors are never cached.
func getWithExpiration[T any](key string, cb func() (T, error), expire time.Duration) (T, error) {
	if x, found := addrCache.Get(key); found {
		return x.(T), nil
	}

	res, err := cb()
	if err == nil {
		addrCache.Set(key, res, expire)
	}
	return res, err
}
