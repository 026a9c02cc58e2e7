// FILE: contract.go
// Package main – A single indivisible unit of a futures lot. Contracts live
// inside exactly one Position, which keys its margin/loan/price maps by
// contract UUID.
package main

import "github.com/google/uuid"

// ContractRole is which side of a contract a Position holds: the opener of
// a BUYLONG position is the BUYER, of a SELLSHORT position the SELLER.
type ContractRole string

const (
	ContractBuyer  ContractRole = "BUYER"
	ContractSeller ContractRole = "SELLER"
)

// ContractStatus tracks whether a contract has been closed.
type ContractStatus string

const (
	ContractOpen  ContractStatus = "OPEN"
	ContractClose ContractStatus = "CLOSE"
)

// Contract is one unit of a futures position: it carries its own UUID so
// history snapshots can diff individual contracts across ticks.
type Contract struct {
	UUID       string
	Instrument *Instrument
	Role       ContractRole
	Status     ContractStatus
}

// newContract creates an OPEN contract for inst with the given role.
func newContract(inst *Instrument, role ContractRole) *Contract {
	return &Contract{
		UUID:       uuid.NewString(),
		Instrument: inst,
		Role:       role,
		Status:     ContractOpen,
	}
}

func directionRole(dir Direction) ContractRole {
	if dir == BuyLong {
		return ContractBuyer
	}
	return ContractSeller
}

// close marks the contract CLOSE (terminal).
func (c *Contract) close() { c.Status = ContractClose }
