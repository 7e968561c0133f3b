package metrics

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Readers for sysfs and procfs attribute files. Kernel attributes hold a
// single value followed by a newline.

func readSysFloat(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
}

func readSysUint(path string) (uint64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(raw)), 10, 64)
}

func readSysString(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// firstExisting returns the first path that exists, or "".
func firstExisting(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// readTempFile reads a temperature attribute in degrees Celsius. hwmon
// and thermal zone files usually report millidegrees; a few drivers
// report plain degrees, so values above 1000 are scaled down.
func readTempFile(path string) (float64, error) {
	v, err := readSysFloat(path)
	if err != nil {
		return 0, err
	}
	if v > 1000 {
		v /= 1000
	}
	return v, nil
}

// thermalZoneTemp scans dir for thermal_zone* entries whose type matches
// one of the candidate substrings and returns the first readable
// temperature.
func thermalZoneTemp(dir string, candidates []string) (float64, bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, false
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "thermal_zone") {
			continue
		}
		zone := filepath.Join(dir, entry.Name())
		zoneType, err := readSysString(filepath.Join(zone, "type"))
		if err != nil {
			continue
		}
		if !matchesAny(strings.ToLower(zoneType), candidates) {
			continue
		}
		if v, err := readTempFile(filepath.Join(zone, "temp")); err == nil {
			return v, true
		}
	}
	return 0, false
}

func matchesAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// meminfoBytes returns the value of one /proc/meminfo key in bytes.
// Lines look like "MemTotal:       32229848 kB".
func meminfoBytes(path, key string) (uint64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return parseMeminfoKey(string(raw), key)
}

func parseMeminfoKey(content, key string) (uint64, bool) {
	prefix := key + ":"
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		unit := "kB"
		if len(fields) >= 3 {
			unit = fields[2]
		}
		switch unit {
		case "kB", "KB":
			value *= 1024
		}
		return value, true
	}
	return 0, false
}
