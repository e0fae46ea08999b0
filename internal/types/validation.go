package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators 在gin的校验器上注册自定义规则，字段名使用json标签
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("unexpected validator engine")
			return
		}
		v.RegisterTagNameFunc(fieldName)
		registerErr = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugPattern.MatchString(fl.Field().String())
		})
	})
	return registerErr
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// IsSlug 是否为合法的slug
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// ValidationErrors 将绑定错误转换为字段到错误信息的映射
func ValidationErrors(err error) map[string]string {
	errs := map[string]string{}

	var verrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &verrs):
		for _, fe := range verrs {
			name := fe.Field()
			if _, exists := errs[name]; !exists {
				errs[name] = message(fe)
			}
		}
	case errors.As(err, &typeErr):
		name := typeErr.Field
		if name == "" {
			name = "body"
		}
		errs[name] = fmt.Sprintf("类型错误，应为 %s", typeErr.Type.String())
	case errors.As(err, &syntaxErr):
		errs["body"] = "请求体不是合法的JSON"
	default:
		errs["body"] = "请求参数错误"
	}
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "该字段为必填项"
	case "email":
		return "邮箱格式不正确"
	case "url":
		return "链接格式不正确"
	case "slug":
		return "只能包含小写字母、数字和中划线"
	case "alphanum":
		return "只能包含字母和数字"
	case "oneof":
		return "取值必须是 " + strings.ReplaceAll(fe.Param(), " ", "、") + " 之一"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("长度不能少于 %s 个字符", fe.Param())
		}
		return "不能小于 " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("长度不能超过 %s 个字符", fe.Param())
		}
		return "不能大于 " + fe.Param()
	case "gt":
		return "必须大于 " + fe.Param()
	case "gte":
		return "不能小于 " + fe.Param()
	case "lte":
		return "不能大于 " + fe.Param()
	}
	return "格式不正确"
}
