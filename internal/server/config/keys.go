package config

import "reflect"

// Keys returns the dotted koanf key of every leaf setting, for example
// "server.redis.read_timeout".
func Keys() []string {
	return collectKeys(reflect.TypeOf(ServerConfig{}), "")
}

func collectKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("koanf")
		if tag == "" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct {
			keys = append(keys, collectKeys(f.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
