package rules

func PassResult(checkID string) Result {
	return Result{CheckID: checkID, Status: StatusPass}
}

func FailResult(checkID string, err error) Result {
	return Result{CheckID: checkID, Status: StatusFail, Err: err}
}

// ResultFromError passes when err is nil and fails with err otherwise.
func ResultFromError(checkID string, err error) Result {
	if err != nil {
		return FailResult(checkID, err)
	}
	return PassResult(checkID)
}
