package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"items-api/internal/domain"

	"github.com/redis/go-redis/v9"
)

// updateScript refuses missing records, writes only the supplied fields and
// returns the whole record in the same round trip
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return redis.call('HGETALL', KEYS[1])
`)

type redisItemRepository struct {
	client *redis.Client
	table  string
}

// NewRedisItemRepository stores each item as a hash under "<table>:<id>" and
// keeps a lexicographic index of ids in "<table>:ids" for paginated scans
func NewRedisItemRepository(client *redis.Client, table string) ItemRepository {
	return &redisItemRepository{client: client, table: table}
}

func (r *redisItemRepository) itemKey(id string) string {
	return r.table + ":" + id
}

func (r *redisItemRepository) indexKey() string {
	return r.table + ":ids"
}

// Put replaces the whole record and indexes its id
func (r *redisItemRepository) Put(ctx context.Context, item *domain.Item) error {
	key := r.itemKey(item.ID)

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encodeItem(item)...)
		pipe.ZAdd(ctx, r.indexKey(), redis.Z{Score: 0, Member: item.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *redisItemRepository) Get(ctx context.Context, id string) (*domain.Item, error) {
	fields, err := r.client.HGetAll(ctx, r.itemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	return decodeItem(fields)
}

// Scan walks the id index from the cursor, exclusive
func (r *redisItemRepository) Scan(ctx context.Context, limit int, cursor *Cursor) (*ScanResult, error) {
	start := "-"
	if cursor != nil && cursor.ID != "" {
		start = "(" + cursor.ID
	}

	// One extra id tells whether another page follows
	ids, err := r.client.ZRangeByLex(ctx, r.indexKey(), &redis.ZRangeBy{
		Min:   start,
		Max:   "+",
		Count: int64(limit + 1),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan item index: %w", err)
	}

	hasMore := len(ids) > limit
	if hasMore {
		ids = ids[:limit]
	}

	items := []*domain.Item{}
	if len(ids) > 0 {
		cmds := make([]*redis.MapStringStringCmd, len(ids))
		_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for i, id := range ids {
				cmds[i] = pipe.HGetAll(ctx, r.itemKey(id))
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan items: %w", err)
		}

		for _, cmd := range cmds {
			fields := cmd.Val()
			if len(fields) == 0 {
				// deleted between the index read and the fetch
				continue
			}
			item, err := decodeItem(fields)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	result := &ScanResult{Items: items, Count: len(items)}
	if hasMore {
		result.Next = &Cursor{ID: ids[len(ids)-1]}
	}

	return result, nil
}

// Update sets the patch fields and updatedAt without reading the record first
func (r *redisItemRepository) Update(ctx context.Context, id string, patch domain.ItemPatch, updatedAt time.Time) (*domain.Item, error) {
	fields := patch.Fields()
	args := make([]interface{}, 0, 2*len(fields)+2)
	for _, f := range fields {
		args = append(args, f.Name, formatValue(f.Value))
	}
	args = append(args, domain.FieldUpdatedAt, formatTime(updatedAt))

	reply, err := updateScript.Run(ctx, r.client, []string{r.itemKey(id)}, args...).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	record, err := hashReply(reply)
	if err != nil {
		return nil, err
	}

	return decodeItem(record)
}

// hashReply flattens a HGETALL reply in either RESP2 or RESP3 shape
func hashReply(reply interface{}) (map[string]string, error) {
	switch v := reply.(type) {
	case []interface{}:
		record := make(map[string]string, len(v)/2)
		for i := 0; i+1 < len(v); i += 2 {
			record[fmt.Sprint(v[i])] = fmt.Sprint(v[i+1])
		}
		return record, nil
	case map[interface{}]interface{}:
		record := make(map[string]string, len(v))
		for field, value := range v {
			record[fmt.Sprint(field)] = fmt.Sprint(value)
		}
		return record, nil
	default:
		return nil, fmt.Errorf("unexpected update reply of type %T", reply)
	}
}

func (r *redisItemRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.itemKey(id))
		pipe.ZRem(ctx, r.indexKey(), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}

func (r *redisItemRepository) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r, id)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case domain.Category:
		return string(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case time.Time:
		return formatTime(val)
	default:
		return fmt.Sprint(val)
	}
}

func encodeItem(item *domain.Item) []interface{} {
	values := []interface{}{
		domain.FieldID, item.ID,
		domain.FieldName, item.Name,
		domain.FieldPrice, formatValue(item.Price),
		domain.FieldCreatedAt, formatTime(item.CreatedAt),
		domain.FieldUpdatedAt, formatTime(item.UpdatedAt),
	}
	if item.Description != nil {
		values = append(values, domain.FieldDescription, *item.Description)
	}
	if item.Category != nil {
		values = append(values, domain.FieldCategory, string(*item.Category))
	}
	if item.Stock != nil {
		values = append(values, domain.FieldStock, formatValue(*item.Stock))
	}
	return values
}

func decodeItem(fields map[string]string) (*domain.Item, error) {
	item := &domain.Item{
		ID:   fields[domain.FieldID],
		Name: fields[domain.FieldName],
	}

	var err error
	if item.Price, err = strconv.ParseFloat(fields[domain.FieldPrice], 64); err != nil {
		return nil, fmt.Errorf("failed to decode price of item %s: %w", item.ID, err)
	}
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, fields[domain.FieldCreatedAt]); err != nil {
		return nil, fmt.Errorf("failed to decode createdAt of item %s: %w", item.ID, err)
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, fields[domain.FieldUpdatedAt]); err != nil {
		return nil, fmt.Errorf("failed to decode updatedAt of item %s: %w", item.ID, err)
	}

	if v, ok := fields[domain.FieldDescription]; ok {
		item.Description = &v
	}
	if v, ok := fields[domain.FieldCategory]; ok {
		category := domain.Category(v)
		item.Category = &category
	}
	if v, ok := fields[domain.FieldStock]; ok {
		stock, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed to decode stock of item %s: %w", item.ID, err)
		}
		item.Stock = &stock
	}

	return item, nil
}
