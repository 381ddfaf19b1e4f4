// Package policy gates domain purchases with Open Policy Agent.
//
// Every enabled policy is a Rego module defining a deny set. Entries are
// strings or objects with a message and an optional severity:
//
//	package launchwolf.purchase.tld
//
//	import rego.v1
//
//	deny contains {"message": "only .com domains", "severity": "error"} if {
//		not endswith(input.domain, ".com")
//	}
//
// The input document is a PurchaseInput. Three builtin policies check the
// registration period, the price cap and the quoted currency. Custom
// policies are loaded from the paths listed in the settings file and may
// replace a builtin by using its name.
//
// Usage:
//
//	eng, err := policy.NewEngine(logger)
//	if err != nil {
//	    return err
//	}
//	result, err := eng.EvaluatePurchase(ctx, policy.PurchaseInput{
//	    Domain:   "example.com",
//	    Currency: "EUR", ExpectedCurrency: "EUR",
//	    Duration: 1, UnitPrice: 15, Total: 15, MaxPrice: 20,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := result.Err(); err != nil {
//	    return err // errors.Is(err, policy.ErrPurchaseDenied)
//	}
package policy
