package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlancehq/parlance/internal/language"
)

func TestCheckName_Valid(t *testing.T) {
	for _, name := range []string{"hello", "shop.order_fish", "A.b.C", "with_underscore"} {
		assert.NoError(t, CheckName(name, false), name)
	}
}

func TestCheckName_Invalid(t *testing.T) {
	cases := []string{
		"",
		"3fish",
		"_leading",
		"has space",
		"has-dash",
		"double__underscore",
		"i_reserved",
		"I_Reserved",
	}
	for _, name := range cases {
		err := CheckName(name, false)
		require.Error(t, err, name)
		assert.True(t, IsDefinitionError(err, ErrCodeInvalidName), name)
	}
}

func TestCheckName_SystemMayUseReservedPrefix(t *testing.T) {
	assert.NoError(t, CheckName("i_color", true))
}

func TestRegisterIntent_DuplicateName(t *testing.T) {
	agent := NewAgent("test")
	require.NoError(t, agent.RegisterIntent(&Intent{Name: "hello"}))

	err := agent.RegisterIntent(&Intent{Name: "hello"})
	assert.True(t, IsDefinitionError(err, ErrCodeDuplicateName))
}

func TestRegisterIntent_UnknownEntity(t *testing.T) {
	agent := NewAgent("test")
	err := agent.RegisterIntent(&Intent{
		Name: "order",
		Parameters: []Parameter{
			{Name: "fish", Type: &Entity{Name: "FishType"}},
		},
	})
	assert.True(t, IsDefinitionError(err, ErrCodeUnknownEntity))
}

func TestRegisterIntent_EntityRegisteredFirst(t *testing.T) {
	agent := NewAgent("test")
	fish := &Entity{Name: "FishType"}
	require.NoError(t, agent.RegisterEntity(fish))
	require.NoError(t, agent.RegisterIntent(&Intent{
		Name:       "order",
		Parameters: []Parameter{{Name: "fish", Type: fish, Required: true}},
	}))
	assert.NotNil(t, agent.Intent("order"))
}

func TestRegisterIntent_RequiredWithDefault(t *testing.T) {
	agent := NewAgent("test")
	err := agent.RegisterIntent(&Intent{
		Name: "order",
		Parameters: []Parameter{
			{Name: "amount", Type: SysInteger, Required: true, Default: int64(1)},
		},
	})
	assert.True(t, IsDefinitionError(err, ErrCodeBadDefault))
}

func TestRegisterIntent_ListWithScalarDefault(t *testing.T) {
	agent := NewAgent("test")
	err := agent.RegisterIntent(&Intent{
		Name: "order",
		Parameters: []Parameter{
			{Name: "toppings", Type: SysColor, IsList: true, Default: "red"},
		},
	})
	assert.True(t, IsDefinitionError(err, ErrCodeBadDefault))
}

func TestValidate_UnknownFollowTarget(t *testing.T) {
	agent := NewAgent("test")
	require.NoError(t, agent.RegisterIntent(&Intent{
		Name:    "answer",
		Follows: []Follow{{Parent: "question", Lifespan: -1}},
	}))

	err := agent.Validate()
	assert.True(t, IsDefinitionError(err, ErrCodeUnknownFollowTarget))
}

func TestValidate_ExampleReferencesUnknownParameter(t *testing.T) {
	agent := NewAgent("test", language.English)
	require.NoError(t, agent.RegisterIntent(&Intent{Name: "hello"}))
	agent.Resources().SetIntent("hello", language.English, &language.IntentLanguage{
		Examples: []string{"hi, I am $user_name{Guido}"},
	})

	err := agent.Validate()
	assert.True(t, IsDefinitionError(err, ErrCodeUnknownParameterReference))
}

func TestValidate_MalformedExample(t *testing.T) {
	agent := NewAgent("test", language.English)
	require.NoError(t, agent.RegisterIntent(&Intent{
		Name:       "hello",
		Parameters: []Parameter{{Name: "user_name", Type: SysPerson}},
	}))
	agent.Resources().SetIntent("hello", language.English, &language.IntentLanguage{
		Examples: []string{"hi, I am $user_name{Guido"},
	})

	err := agent.Validate()
	assert.True(t, IsDefinitionError(err, ErrCodeMalformedTemplate))
}

func TestNewAgent_DefaultsToEnglish(t *testing.T) {
	agent := NewAgent("test")
	assert.Equal(t, []language.Code{language.English}, agent.Languages())
}
