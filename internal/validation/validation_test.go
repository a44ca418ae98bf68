// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type validationTestSuite struct {
	suite.Suite
}

func TestValidation(t *testing.T) {
	suite.Run(t, new(validationTestSuite))
}

func (s *validationTestSuite) TestChain() {
	s.Run("with no violation", func() {
		err := New().
			AddAssertion(true, "never").
			AddValidator(NewPositiveValidator("timeout", time.Second)).
			Validate()
		s.Assert().NoError(err)
	})
	s.Run("with all errors", func() {
		err := New().
			AddAssertion(false, "first").
			AddAssertion(false, "second").
			Validate()
		s.Assert().EqualError(err, "first; second")
	})
	s.Run("with fail fast", func() {
		err := New(FailFast()).
			AddAssertion(false, "first").
			AddAssertion(false, "second").
			Validate()
		s.Assert().EqualError(err, "first")
	})
	s.Run("with validator func", func() {
		sentinel := errors.New("custom")
		err := New().AddValidator(ValidatorFunc(func() error { return sentinel })).Validate()
		s.Assert().ErrorIs(err, sentinel)
	})
}

func (s *validationTestSuite) TestRange() {
	s.Assert().NoError(NewRangeValidator("size", 10, 2, 65535).Validate())
	s.Assert().NoError(NewRangeValidator("size", 2, 2, 65535).Validate())
	s.Assert().EqualError(NewRangeValidator("size", 70000, 2, 65535).Validate(),
		"the [size] must be within [2, 65535], got 70000")
	s.Assert().Error(NewPositiveValidator("interval", time.Duration(0)).Validate())
	s.Assert().Error(NewPositiveValidator("retries", -1).Validate())
}

func (s *validationTestSuite) TestTCPAddress() {
	s.Assert().NoError(NewTCPAddressValidator("127.0.0.1:3222").Validate())
	s.Assert().NoError(NewTCPAddressValidator("127.0.0.1:0").Validate())
	s.Assert().Error(NewTCPAddressValidator("127.0.0.1:-1").Validate())
	s.Assert().Error(NewTCPAddressValidator("127.0.0.1:655387").Validate())
	s.Assert().Error(NewTCPAddressValidator("127.0.0.1").Validate())
	s.Assert().Error(NewTCPAddressValidator(":3222").Validate())
	s.Assert().NoError(NewTCPAddressValidator(":3222").AllowWildcard().Validate())
}
