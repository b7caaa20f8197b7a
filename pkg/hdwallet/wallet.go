// Package hdwallet BIP39 助记词 + BIP44 路径派生以太坊账户
package hdwallet

import (
	"crypto/ecdsa"
	"errors"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
)

// CoinTypeETH BIP44 coin_type
const CoinTypeETH uint32 = 60

var ErrInvalidMnemonic = errors.New("hdwallet: invalid mnemonic")

type HDWallet struct {
	master *hdkeychain.ExtendedKey
}

// New 助记词多余空白会被规整；passphrase 可为空
func New(mnemonic, passphrase string) (*HDWallet, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}
	seed := bip39.NewSeed(mnemonic, passphrase)
	// 以太坊只用到私钥，网络参数不影响派生结果
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	return &HDWallet{master: master}, nil
}

// derive m / 44' / coin' / 0' / 0 / index
func (w *HDWallet) derive(coin, index uint32) (*btcec.PrivateKey, error) {
	path := []uint32{
		44 + hdkeychain.HardenedKeyStart,
		coin + hdkeychain.HardenedKeyStart,
		hdkeychain.HardenedKeyStart,
		0,
		index,
	}
	key := w.master
	var err error
	for _, idx := range path {
		if key, err = key.Derive(idx); err != nil {
			return nil, err
		}
	}
	return key.ECPrivKey()
}

// EthKey 第 index 个以太坊账户
func (w *HDWallet) EthKey(index uint32) (*ecdsa.PrivateKey, common.Address, error) {
	priv, err := w.derive(CoinTypeETH, index)
	if err != nil {
		return nil, common.Address{}, err
	}
	key := priv.ToECDSA()
	return key, crypto.PubkeyToAddress(key.PublicKey), nil
}

// EthKeyHex 直接给出十六进制私钥（不带 0x），给只认 hex 的配置用
func EthKeyHex(mnemonic, passphrase string, index uint32) (string, common.Address, error) {
	w, err := New(mnemonic, passphrase)
	if err != nil {
		return "", common.Address{}, err
	}
	key, addr, err := w.EthKey(index)
	if err != nil {
		return "", common.Address{}, err
	}
	return common.Bytes2Hex(crypto.FromECDSA(key)), addr, nil
}
