package api

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github-repo-scorer/internal/common"
	"github-repo-scorer/internal/domain"
)

// createdPattern 月、日做范围检查，允许省略前导零
var createdPattern = regexp.MustCompile(`^\d{4}-(0?[1-9]|1[012])-(0?[1-9]|[12][0-9]|3[01])$`)

// maxSafeInteger 对应 JS 的 Number.MAX_SAFE_INTEGER
const maxSafeInteger = 1<<53 - 1

// listQuery getAllRepos 校验通过后的参数
type listQuery struct {
	Language   string
	Created    string
	Pagination domain.Pagination
	Excluded   domain.Exclusions
}

// violations 收集全部校验错误，按字段顺序用 "," 拼接
type violations []string

func (v *violations) add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return common.NewError(common.ErrCodeInvalidInput, strings.Join(v, ","))
}

func parseListQuery(values url.Values) (listQuery, error) {
	var (
		q    listQuery
		errs violations
	)

	if language, ok := requiredString(values, "language", &errs); ok {
		q.Language = language
	}

	if created, ok := requiredString(values, "created", &errs); ok {
		if m := createdPattern.FindStringSubmatch(created); m != nil {
			q.Created = normalizeDate(created[:4], m[1], m[2])
		} else {
			errs.add("%q with value %q fails to match the required pattern: /%s/", "created", created, createdPattern.String())
		}
	}

	q.Pagination.PerPage = optionalInt(values, "limit", &errs)
	q.Pagination.Page = optionalInt(values, "page", &errs)
	q.Pagination.Order = optionalEnum(values, "order", []string{"asc", "desc"}, &errs)
	q.Pagination.Sort = optionalEnum(values, "sortBy", []string{"stars", "forks", "updated"}, &errs)
	q.Excluded = optionalExclusions(values, &errs)

	rejectUnknown(values, []string{"language", "created", "limit", "page", "order", "sortBy", "excludedScoreCriteria"}, &errs)

	if err := errs.err(); err != nil {
		return listQuery{}, err
	}
	return q, nil
}

func parseRepoInfoQuery(values url.Values) (domain.Exclusions, error) {
	var errs violations

	excluded := optionalExclusions(values, &errs)
	rejectUnknown(values, []string{"excludedScoreCriteria"}, &errs)

	if err := errs.err(); err != nil {
		return nil, err
	}
	return excluded, nil
}

func requiredString(values url.Values, key string, errs *violations) (string, bool) {
	if !values.Has(key) {
		errs.add("%q is required", key)
		return "", false
	}
	v := values.Get(key)
	if v == "" {
		errs.add("%q is not allowed to be empty", key)
		return "", false
	}
	return v, true
}

// optionalInt 缺省返回 0，上游请求中不会带上该参数
func optionalInt(values url.Values, key string, errs *violations) int {
	if !values.Has(key) {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(values.Get(key)), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		errs.add("%q must be a number", key)
		return 0
	}
	if math.Abs(f) > maxSafeInteger {
		errs.add("%q must be a safe number", key)
		return 0
	}
	if f != math.Trunc(f) {
		errs.add("%q must be an integer", key)
		return 0
	}
	return int(f)
}

// normalizeDate 补齐前导零，上游只认 YYYY-MM-DD
func normalizeDate(year, month, day string) string {
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s-%02d-%02d", year, m, d)
}

func optionalEnum(values url.Values, key string, allowed []string, errs *violations) string {
	if !values.Has(key) {
		return ""
	}
	v := values.Get(key)
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	errs.add("%q must be one of [%s]", key, strings.Join(allowed, ", "))
	return ""
}

// optionalExclusions 校验 excludedScoreCriteria，只报告第一个非法值
func optionalExclusions(values url.Values, errs *violations) domain.Exclusions {
	const key = "excludedScoreCriteria"
	if !values.Has(key) {
		return domain.Exclusions{}
	}
	raw := values.Get(key)
	if raw == "" {
		errs.add("%q is not allowed to be empty", key)
		return nil
	}

	parts := strings.Split(raw, ",")
	if len(parts) > domain.MaxExclusions {
		errs.add("%s", domain.ErrTooManyExclusions.Error())
		return nil
	}

	valid := make([]string, 0, len(domain.AllMetrics))
	for _, m := range domain.AllMetrics {
		valid = append(valid, string(m))
	}

	excluded := make(domain.Exclusions, 0, len(parts))
	for _, part := range parts {
		m, err := domain.ParseMetric(part)
		if err != nil {
			errs.add("The valid values are %s. %s is invalid", strings.Join(valid, ","), part)
			return nil
		}
		excluded = append(excluded, m)
	}
	return excluded
}

func rejectUnknown(values url.Values, known []string, errs *violations) {
	var unknown []string
	for key := range values {
		isKnown := false
		for _, k := range known {
			if key == k {
				isKnown = true
				break
			}
		}
		if !isKnown {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		errs.add("%q is not allowed", key)
	}
}
