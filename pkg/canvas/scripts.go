package canvas

import "github.com/redis/go-redis/v9"

// Script result codes.
const (
	scriptOK             = 0
	scriptAlreadyExists  = 1
	scriptNotInitialized = 2
	scriptCorrupt        = 3
)

// genesisScript creates the info hash and a fully white overlay, unless
// either already exists.
//
// KEYS[1] info hash, KEYS[2] colors list
// ARGV[1] cell count, ARGV[2] white, ARGV[3..] info field/value pairs
var genesisScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 or redis.call('EXISTS', KEYS[2]) == 1 then
	return 1
end
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
for i = 1, tonumber(ARGV[1]) do
	redis.call('RPUSH', KEYS[2], ARGV[2])
end
return 0
`)

// buyScript inserts a pixel record and paints its slot in one step. The
// overlay is checked before anything is written, so a failed purchase never
// leaves one store updated without the other.
//
// KEYS[1] pixel hash, KEYS[2] colors list
// ARGV[1] slot, ARGV[2] color, ARGV[3] cell count, ARGV[4..] pixel field/value pairs
var buyScript = redis.NewScript(`
local len = redis.call('LLEN', KEYS[2])
if len == 0 then
	return 2
end
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 1
end
local slot = tonumber(ARGV[1])
if len ~= tonumber(ARGV[3]) or slot >= len then
	return 3
end
redis.call('HSET', KEYS[1], unpack(ARGV, 4))
redis.call('LSET', KEYS[2], slot, ARGV[2])
return 0
`)
